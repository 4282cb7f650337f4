//go:build unix

package arena

import "golang.org/x/sys/unix"

// MmapBytes backs a large dynamic series buffer with a real anonymous page
// mapping instead of a Go-heap slice, the way internal/mmfile backs hive
// data with a file-backed mapping. Used by core/series when a dynamic
// buffer crosses pageBackedThreshold, so growth of the runtime's largest
// allocations exercises an actual page-granular allocator rather than
// relying entirely on the Go allocator.
func MmapBytes(size int) ([]byte, error) {
	if size <= 0 {
		size = 1
	}
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// MunmapBytes releases memory obtained from MmapBytes.
func MunmapBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
