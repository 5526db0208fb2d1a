//go:build linux || darwin
// +build linux darwin

package cmd

import "syscall"

// diskMonitor reports the free space of the volume holding dir.
type diskMonitor struct {
	dir string
}

// FreeSpace returns the available bytes for unprivileged users. The
// space is unknown while dir does not exist yet.
func (m *diskMonitor) FreeSpace() (uint64, bool) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(m.dir, &stat); err != nil {
		return 0, false
	}
	return stat.Bavail * uint64(stat.Bsize), true
}
