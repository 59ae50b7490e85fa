package pagecache

import "time"

type (
	// FetchFunc materializes one page of guest physical memory.
	// It returns a freshly allocated buffer of exactly length bytes
	// holding the page that starts at paddr. Backends that need access
	// to their owning instance should capture it in the closure.
	FetchFunc func(paddr uint64, length uint32) ([]byte, error)
	// ReleaseFunc relinquishes a buffer previously returned by a
	// [FetchFunc]. The cache calls it exactly once per fetched buffer.
	ReleaseFunc func(buf []byte, length uint32)
	// Config parameterizes [New], [NewCache], and [NewSlot].
	Config struct {
		// Fetch materializes pages on cache misses. Required.
		Fetch FetchFunc
		// Release relinquishes buffers obtained from Fetch. Required.
		Release ReleaseFunc
		// AgeLimit bounds how long a fetched buffer may be reused.
		// Entries older than this are refetched on their next lookup.
		// Zero disables staleness checks entirely.
		AgeLimit time.Duration
		// MemSize is the guest's physical memory size in bytes.
		// Only consulted when HVM is set.
		MemSize uint64
		// Capacity is the entry ceiling of the full cache.
		// Zero selects [DefaultCapacity]. Ignored by [NewSlot].
		Capacity int
		// PageSize is the fixed page size in bytes.
		// Must be a nonzero power of two.
		PageSize uint32
		// HVM marks the guest as hardware-virtualized. Only HVM guests
		// have a well-defined physical memory size, so only they get
		// the out-of-range request check.
		HVM bool
	}
	// PageCache is the operation set shared by [Cache] and [Slot].
	PageCache interface {
		Insert(paddr uint64) ([]byte, error)
		Remove(paddr uint64)
		Destroy()
	}
)

const (
	// DefaultCapacity is the entry ceiling used when [Config.Capacity] is zero.
	DefaultCapacity = 512
	// MinimumCapacity defines the lowest capacity supported by [NewCache].
	// Eviction trims to half the capacity, so anything lower degenerates.
	MinimumCapacity = 2
)

func (cfg *Config) validate() error {
	if size := cfg.PageSize; size == 0 || size&(size-1) != 0 {
		return pageSizeError(size)
	}
	if cfg.Fetch == nil {
		return callbackError("fetch")
	}
	if cfg.Release == nil {
		return callbackError("release")
	}
	if cfg.HVM && cfg.MemSize == 0 {
		return memSizeError()
	}
	return nil
}

func aligned(paddr uint64, pageSize uint32) bool {
	return paddr&(uint64(pageSize)-1) == 0
}
