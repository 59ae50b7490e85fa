//go:build !pagecache_single

package pagecache

// New returns the default [PageCache] for this build: the full LRU [Cache].
// Builds with the `pagecache_single` tag get a [Slot] instead.
func New(cfg Config) (PageCache, error) {
	return NewCache(cfg)
}
