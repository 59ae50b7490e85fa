package pagecache_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/djdv/go-pagecache"
)

const pageSize = 0x1000

// testBackend is a recording fetch/release pair. Every fetched buffer is
// branded with a serial number so releases can be matched exactly-once
// against fetches, regardless of which path discarded the buffer.
type testBackend struct {
	tb           testing.TB
	fetches      map[uint64]int
	released     map[uint64]int
	lengths      map[uint64]uint32
	fail         map[uint64]error
	serial       uint64
	fetchTotal   int
	releaseTotal int
}

func newBackend(tb testing.TB) *testBackend {
	return &testBackend{
		tb:       tb,
		fetches:  make(map[uint64]int),
		released: make(map[uint64]int),
		lengths:  make(map[uint64]uint32),
		fail:     make(map[uint64]error),
	}
}

func (b *testBackend) config() pagecache.Config {
	return pagecache.Config{
		PageSize: pageSize,
		Fetch:    b.fetch,
		Release:  b.release,
	}
}

func (b *testBackend) fetch(paddr uint64, length uint32) ([]byte, error) {
	if err, ok := b.fail[paddr]; ok {
		return nil, err
	}
	b.serial++
	b.fetches[paddr]++
	b.fetchTotal++
	b.lengths[b.serial] = length
	buf := make([]byte, length)
	binary.LittleEndian.PutUint64(buf, b.serial)
	return buf, nil
}

func (b *testBackend) release(buf []byte, length uint32) {
	b.tb.Helper()
	serial := serialOf(buf)
	require.Contains(b.tb, b.lengths, serial,
		"released a buffer that was never fetched")
	require.Equal(b.tb, b.lengths[serial], length,
		"release length must match fetch length")
	b.released[serial]++
	b.releaseTotal++
	require.LessOrEqual(b.tb, b.released[serial], 1,
		"buffer released more than once")
}

// live reports how many fetched buffers have not been released yet.
func (b *testBackend) live() int { return b.fetchTotal - b.releaseTotal }

func serialOf(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

func newTestCache(tb testing.TB, backend *testBackend, capacity int) *pagecache.Cache {
	tb.Helper()
	cfg := backend.config()
	cfg.Capacity = capacity
	cache, err := pagecache.NewCache(cfg)
	require.NoError(tb, err)
	return cache
}

func collectKeys(cache *pagecache.Cache) []uint64 {
	var keys []uint64
	for key := range cache.Keys() {
		keys = append(keys, key)
	}
	return keys
}
