//go:build !linux && !darwin && !windows

package game

// systemMemory is unknown on the remaining platforms, which classifies as low-end.
func systemMemory() uint64 { return 0 }
