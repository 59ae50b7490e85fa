//go:build pagecache_single

package pagecache

// New returns the default [PageCache] for this build: the single-entry
// [Slot], selected by the `pagecache_single` tag for memory-constrained
// deployments. Regular builds get the full LRU [Cache].
func New(cfg Config) (PageCache, error) {
	return NewSlot(cfg)
}
