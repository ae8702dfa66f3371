//go:build !linux
// +build !linux

package stream

import "fmt"

// mapRegion falls back to the Go heap on non-Linux platforms
func mapRegion(size int) (buf []byte, release func([]byte) error, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("allocation of %d bytes failed: %v", size, r)
		}
	}()
	buf = make([]byte, size)
	return buf, func([]byte) error { return nil }, nil
}
