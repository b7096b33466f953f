//go:build windows

package main

import (
	"syscall"
	"unsafe"
)

type memoryStatusEx struct {
	dwLength                uint32
	dwMemoryLoad            uint32
	ullTotalPhys            uint64
	ullAvailPhys            uint64
	ullTotalPageFile        uint64
	ullAvailPageFile        uint64
	ullTotalVirtual         uint64
	ullAvailVirtual         uint64
	ullAvailExtendedVirtual uint64
}

// totalMemory returns installed RAM in bytes
func totalMemory() (uint64, error) {
	proc := syscall.NewLazyDLL("kernel32.dll").NewProc("GlobalMemoryStatusEx")

	var status memoryStatusEx
	status.dwLength = uint32(unsafe.Sizeof(status))

	if ret, _, err := proc.Call(uintptr(unsafe.Pointer(&status))); ret == 0 {
		return 0, err
	}
	return status.ullTotalPhys, nil
}
