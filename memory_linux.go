//go:build linux
// +build linux

package stream

import "golang.org/x/sys/unix"

// mapRegion maps anonymous private memory. Pages are not populated here;
// the initializer touches them from the workers that will stream them.
func mapRegion(size int) ([]byte, func([]byte) error, error) {
	buf, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, nil, err
	}
	return buf, unix.Munmap, nil
}
