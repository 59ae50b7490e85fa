package pagecache

import (
	"iter"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/djdv/go-pagecache/internal/list"
)

type (
	node = list.Node[uint64, *entry]
	// entry owns one resident page buffer.
	entry struct {
		lastUpdated time.Time
		lastUsed    time.Time
		data        []byte
		paddr       uint64
		length      uint32
	}
	// Stats counts cache activity since construction.
	// Counters are never reset, not even by [Cache.Destroy].
	Stats struct {
		// Hits is the number of lookups served from a resident entry.
		Hits uint64
		// Misses is the number of lookups that found no resident entry,
		// whether or not the subsequent fetch succeeded.
		Misses uint64
		// Evictions is the number of entries trimmed for capacity.
		Evictions uint64
		// Refreshes is the number of entries refetched for staleness.
		Refreshes uint64
	}
	// Cache maps aligned guest physical addresses to resident page
	// buffers, evicting the least recently used half when full.
	// Concurrent access must be guarded by the caller.
	// Constructed by [NewCache].
	Cache struct {
		index    map[uint64]*node
		now      func() time.Time
		fetch    FetchFunc
		release  ReleaseFunc
		lru      list.List[uint64, *entry]
		ageLimit time.Duration
		memSize  uint64
		stats    Stats
		capacity int
		pageSize uint32
		hvm      bool
	}
)

// NewCache creates a [Cache] from cfg.
// The callbacks are retained for the cache's lifetime.
func NewCache(cfg Config) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < MinimumCapacity {
		return nil, minCapacityError(capacity)
	}
	return &Cache{
		index:    make(map[uint64]*node, capacity),
		now:      time.Now,
		fetch:    cfg.Fetch,
		release:  cfg.Release,
		ageLimit: cfg.AgeLimit,
		memSize:  cfg.MemSize,
		capacity: capacity,
		pageSize: cfg.PageSize,
		hvm:      cfg.HVM,
	}, nil
}

// Insert returns the page buffer for the aligned physical address paddr,
// fetching it from the backend if it is not resident (or too stale to
// reuse). The returned buffer remains owned by the cache; it is valid
// until the entry is evicted, removed, refreshed, or the cache destroyed.
func (c *Cache) Insert(paddr uint64) ([]byte, error) {
	if c.index == nil {
		return nil, ErrCacheDestroyed
	}
	if !aligned(paddr, c.pageSize) {
		log.Errorf("memory cache request for non-aligned page 0x%x", paddr)
		return nil, misalignedError(paddr, c.pageSize)
	}
	if hit, ok := c.index[paddr]; ok {
		log.Debugf("memory cache hit 0x%x", paddr)
		c.stats.Hits++
		return c.validateAndReturn(hit)
	}
	log.Debugf("memory cache set 0x%x", paddr)
	c.stats.Misses++
	ent, err := c.newEntry(paddr, c.pageSize)
	if err != nil {
		return nil, err
	}
	c.index[paddr] = c.lru.PushFront(paddr, ent)
	if debugging {
		c.checkInvariants()
	}
	return ent.data, nil
}

// newEntry fetches paddr and wraps it in an entry, trimming the cache
// first if it is at capacity. Nothing is linked yet on return.
func (c *Cache) newEntry(paddr uint64, length uint32) (*entry, error) {
	// The range check only holds for HVM guests; paravirtualized page
	// table walks may legitimately reference addresses beyond the
	// declared memory size (cr3 > memsize during PV lookups).
	if c.hvm && paddr+uint64(length)-1 > c.memSize {
		log.Errorf(
			"requesting PA [0x%x] beyond memsize [0x%x] (paddr 0x%x, length 0x%x)",
			paddr+uint64(length), c.memSize, paddr, length)
		return nil, outOfRangeError(paddr, length, c.memSize)
	}
	if c.lru.Len() >= c.capacity {
		c.clean()
	}
	data, err := c.fetchPage(paddr, length)
	if err != nil {
		return nil, err
	}
	now := c.now()
	return &entry{
		paddr:       paddr,
		length:      length,
		lastUpdated: now,
		lastUsed:    now,
		data:        data,
	}, nil
}

func (c *Cache) fetchPage(paddr uint64, length uint32) ([]byte, error) {
	data, err := c.fetch(paddr, length)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch page 0x%x", paddr)
	}
	if uint32(len(data)) != length {
		return nil, fetchFailedError(paddr)
	}
	return data, nil
}

// validateAndReturn refreshes a stale entry, touches it, promotes it to
// the front of the recency list, and returns its buffer.
func (c *Cache) validateAndReturn(hit *node) ([]byte, error) {
	var (
		ent = hit.Value
		now = c.now()
	)
	if c.ageLimit > 0 && now.Sub(ent.lastUpdated) > c.ageLimit {
		log.Debugf("memory cache refresh 0x%x", ent.paddr)
		c.release(ent.data, ent.length)
		ent.data = nil
		data, err := c.fetchPage(ent.paddr, ent.length)
		if err != nil {
			// The stale buffer is already released; drop the entry so
			// every resident entry keeps a live buffer and the next
			// lookup misses cleanly.
			delete(c.index, hit.Key)
			c.lru.Remove(hit)
			return nil, err
		}
		ent.data = data
		ent.lastUpdated = now
		c.stats.Refreshes++
	}
	ent.lastUsed = now
	c.lru.MoveToFront(hit)
	if debugging {
		c.checkInvariants()
	}
	return ent.data, nil
}

// clean detaches entries from the list tail until at most half the
// capacity remains, releasing each victim's buffer.
func (c *Cache) clean() {
	for c.lru.Len() > c.capacity/2 {
		victim := c.lru.PopBack()
		delete(c.index, victim.Key)
		c.freeEntry(victim.Value)
		c.stats.Evictions++
	}
	log.Debugf("memory cache cleanup round complete (cache size = %d)", c.lru.Len())
}

func (c *Cache) freeEntry(ent *entry) {
	c.release(ent.data, ent.length)
	ent.data = nil
}

// Remove discards the entry for the aligned physical address paddr,
// releasing its buffer. Absent keys and misaligned requests are no-ops.
func (c *Cache) Remove(paddr uint64) {
	if c.index == nil {
		return
	}
	if !aligned(paddr, c.pageSize) {
		log.Errorf("memory cache request for non-aligned page 0x%x", paddr)
		return
	}
	hit, ok := c.index[paddr]
	if !ok {
		return
	}
	delete(c.index, paddr)
	c.lru.Remove(hit)
	c.freeEntry(hit.Value)
	if debugging {
		c.checkInvariants()
	}
}

// Destroy releases every resident buffer and drops the callbacks.
// Afterwards [Cache.Insert] reports [ErrCacheDestroyed] and
// [Cache.Remove] and Destroy are no-ops; a destroyed cache
// cannot be revived.
func (c *Cache) Destroy() {
	if c.index == nil {
		return
	}
	c.capacity = 0
	for hit := range c.lru.Iter() {
		c.freeEntry(hit.Value)
	}
	c.lru = list.List[uint64, *entry]{}
	c.index = nil
	c.ageLimit = 0
	c.fetch = nil
	c.release = nil
}

// Len returns the number of resident pages.
func (c *Cache) Len() int { return len(c.index) }

// Keys returns an iterator over the resident aligned addresses,
// most recently used first.
func (c *Cache) Keys() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for hit := range c.lru.Iter() {
			if !yield(hit.Key) {
				return
			}
		}
	}
}

// Stats returns a snapshot of the activity counters.
func (c *Cache) Stats() Stats { return c.stats }

// checkInvariants panics if the index and recency list have diverged.
// Only called when built with the pagecache_debug tag.
func (c *Cache) checkInvariants() {
	assert(len(c.index) == c.lru.Len(),
		"index and recency list diverged")
	assert(c.lru.Len() <= c.capacity,
		"cache grew past capacity")
	var prev *entry
	for hit := range c.lru.Iter() {
		ent := hit.Value
		assert(c.index[hit.Key] == hit,
			"list node missing from index")
		assert(aligned(hit.Key, c.pageSize),
			"non-aligned key cached")
		assert(ent.data != nil,
			"resident entry without a live buffer")
		if prev != nil {
			assert(!prev.lastUsed.Before(ent.lastUsed),
				"recency order violated")
		}
		prev = ent
	}
}
