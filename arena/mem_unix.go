//go:build unix

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapProvider reserves anonymous, not-file-backed memory via mmap,
// mirroring os_linux.c's os_mem_reserve/os_mem_unreserve.
type mmapProvider struct{}

func (mmapProvider) Reserve(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap reserve %d bytes: %w", size, err)
	}
	return data, nil
}

func (mmapProvider) Unreserve(region []byte) {
	if len(region) == 0 {
		return
	}
	if err := unix.Munmap(region); err != nil {
		Logger().Sugar().Errorf("arena: munmap failed: %v", err)
	}
}

func newDefaultProvider() MemoryProvider {
	return mmapProvider{}
}
