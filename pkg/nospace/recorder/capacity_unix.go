//go:build linux || darwin

package recorder

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Capacity returns the total and available bytes of the filesystem
// holding path.
func Capacity(path string) (total, available uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", path, err)
	}

	bsize := uint64(st.Bsize)
	return uint64(st.Blocks) * bsize, uint64(st.Bavail) * bsize, nil
}
