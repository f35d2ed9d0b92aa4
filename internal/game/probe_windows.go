//go:build windows

package game

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func systemMemory() uint64 {
	var status windows.MemoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))
	if err := windows.GlobalMemoryStatusEx(&status); err != nil {
		return 0
	}
	return status.TotalPhys
}
