// Package pagecache implements a [Cache] of guest physical memory pages
// for virtual-machine introspection backends.
//
// Reading a page of a guest's physical memory is expensive: every read
// goes through a hypervisor call or a file-backed mapping. The cache
// amortizes that cost by keeping recently fetched pages resident in host
// memory, bounding their freshness with an age limit, and evicting the
// least recently used half whenever the entry ceiling is reached.
//
// The following is a summary intended for maintainers.
//
// Glossary:
//
//   - Physical address (paddr)
//
//     An address in the guest VM's physical memory space.
//
//   - Page
//
//     A fixed-size, aligned block of guest physical memory; the unit of
//     caching. The page size is fixed at construction and every entry
//     holds exactly one page.
//
//   - Aligned
//
//     paddr & (pageSize - 1) == 0. Misaligned requests are rejected,
//     never rounded down.
//
//   - HVM guest
//
//     A hardware-virtualized guest. Only HVM guests have a well-defined
//     physical memory size, so only their requests are bounds-checked;
//     paravirtualized page table walks may legitimately reference
//     addresses past the declared size.
//
//   - Age limit
//
//     The maximum wall-clock interval between a fetch and acceptable
//     reuse of the buffer. A stale entry is refetched on lookup and
//     behaves like a fresh insert for recency purposes, because the
//     cost of a refresh is comparable to a miss. Zero disables the check.
//
//   - Fetch/release callbacks
//
//     Externally supplied functions that materialize and relinquish a
//     page buffer. The cache treats buffers as opaque and never inspects
//     their contents.
//
// Invariants (hold at every public-API boundary):
//
//   - The index and the recency list always contain the same keys,
//     and every key is page-aligned.
//
//   - The recency list is ordered most recently used first.
//
//   - Every resident entry owns a live buffer obtained from the fetch
//     callback, and every buffer the cache ever fetched is passed to the
//     release callback exactly once, on whichever path discards it:
//     capacity eviction, staleness refresh, explicit removal, or destroy.
//
//   - Resident count never exceeds the capacity; after an insert that
//     triggered eviction it is at most capacity/2 + 1.
//
// Operations:
//
//   - Insert
//
//     Lookup-or-fetch. On hit the entry is staleness-checked, touched,
//     and promoted to the front of the recency list. On miss the cache
//     is trimmed if full, the page fetched, and a new entry linked at
//     the front. Backend failures surface as errors and leave the cache
//     unchanged.
//
//   - Eviction
//
//     Trims tail entries until at most half the capacity remains.
//     Halving amortizes the traversal and buffer releases across many
//     future inserts instead of evicting one entry per insert.
//
//   - Remove
//
//     Discards one entry and releases its buffer. Absent keys are no-ops.
//
//   - Destroy
//
//     Releases every resident buffer and drops the callbacks.
//
// [Slot] is a degenerate single-entry variant for deployments where the
// full cache's bookkeeping is not justified; the `pagecache_single`
// build tag makes [New] return it instead of [Cache].
//
// The cache performs no synchronization of its own; the enclosing
// library must serialize access.
package pagecache
