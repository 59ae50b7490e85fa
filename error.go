package pagecache

import "fmt"

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrInvalidConfig may be returned from [New], [NewCache], and [NewSlot].
	ErrInvalidConfig = constError("invalid configuration")
	// ErrMisalignedAddress is returned from [Cache.Insert] when the
	// requested address is not a multiple of the page size.
	ErrMisalignedAddress = constError("request for non-aligned page")
	// ErrAddressOutOfRange is returned from [Cache.Insert] when an HVM
	// guest's request extends past the declared guest memory size.
	ErrAddressOutOfRange = constError("address beyond guest memory size")
	// ErrFetchFailed is returned when the fetch callback produced no
	// buffer (or one of the wrong length) without reporting an error.
	ErrFetchFailed = constError("backend returned no page data")
	// ErrCacheDestroyed is returned from [Cache.Insert] after [Cache.Destroy].
	ErrCacheDestroyed = constError("cache used after destroy")
)

func pageSizeError(pageSize uint32) error {
	return fmt.Errorf(
		"%w: page size must be a nonzero power of two but %d was requested",
		ErrInvalidConfig, pageSize)
}

func callbackError(name string) error {
	return fmt.Errorf(
		"%w: %s callback must not be nil",
		ErrInvalidConfig, name)
}

func memSizeError() error {
	return fmt.Errorf(
		"%w: HVM bounds checking requires a nonzero guest memory size",
		ErrInvalidConfig)
}

func minCapacityError(capacity int) error {
	return fmt.Errorf(
		"%w: capacity must be >=%d but %d was requested",
		ErrInvalidConfig, MinimumCapacity, capacity)
}

func misalignedError(paddr uint64, pageSize uint32) error {
	return fmt.Errorf(
		"%w: 0x%x with page size 0x%x",
		ErrMisalignedAddress, paddr, pageSize)
}

func outOfRangeError(paddr uint64, length uint32, memSize uint64) error {
	return fmt.Errorf(
		"%w: paddr 0x%x length 0x%x memsize 0x%x",
		ErrAddressOutOfRange, paddr, length, memSize)
}

func fetchFailedError(paddr uint64) error {
	return fmt.Errorf("%w: 0x%x", ErrFetchFailed, paddr)
}
