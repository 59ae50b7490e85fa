package pagecache

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Slot is a single-entry page cache for memory-constrained deployments
// where the bookkeeping of the full [Cache] is not justified.
// It trusts the caller: no alignment check and no staleness check is
// performed, only single-element locality.
// Concurrent access must be guarded by the caller.
// Constructed by [NewSlot].
type Slot struct {
	fetch    FetchFunc
	release  ReleaseFunc
	lastPage []byte
	lastKey  uint64
	pageSize uint32
}

// NewSlot creates a [Slot] from cfg.
// [Config.Capacity], [Config.AgeLimit], [Config.HVM], and [Config.MemSize]
// are ignored.
func NewSlot(cfg Config) (*Slot, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Slot{
		fetch:    cfg.Fetch,
		release:  cfg.Release,
		pageSize: cfg.PageSize,
	}, nil
}

// Insert returns the page buffer for paddr. A repeated request for the
// resident address returns the held buffer; any other address releases
// the held buffer and fetches the new one.
func (s *Slot) Insert(paddr uint64) ([]byte, error) {
	if paddr == s.lastKey && s.lastPage != nil {
		return s.lastPage, nil
	}
	// Address zero never counts as occupying the slot.
	if s.lastKey != 0 && s.lastPage != nil {
		s.release(s.lastPage, s.pageSize)
	}
	s.lastPage = nil
	s.lastKey = paddr
	data, err := s.fetch(paddr, s.pageSize)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch page 0x%x", paddr)
	}
	if uint32(len(data)) != s.pageSize {
		return nil, fetchFailedError(paddr)
	}
	s.lastPage = data
	return s.lastPage, nil
}

// Remove releases the held buffer if paddr matches the resident address.
//
// Known caveat: the slot is left populated, so a following Insert of the
// same address returns the already-released buffer without refetching.
// Callers that need the slot afterwards must insert a different address
// or call [Slot.Destroy].
func (s *Slot) Remove(paddr uint64) {
	if paddr == s.lastKey && s.lastPage != nil {
		log.Debugf("memory cache remove 0x%x", paddr)
		s.release(s.lastPage, s.pageSize)
	}
}

// Destroy releases the held buffer (if any), clears the slot, and drops
// the callbacks. No operation may be called afterwards.
func (s *Slot) Destroy() {
	if s.lastKey != 0 && s.lastPage != nil {
		s.release(s.lastPage, s.pageSize)
	}
	s.lastKey = 0
	s.lastPage = nil
	s.fetch = nil
	s.release = nil
}
