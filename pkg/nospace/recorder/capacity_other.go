//go:build !linux && !darwin

package recorder

// Capacity is not supported on this platform.
func Capacity(path string) (total, available uint64, err error) {
	return 0, 0, ErrCapacityUnsupported
}
