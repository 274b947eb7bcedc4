//go:build linux || darwin

package fs

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// fileTimes returns the creation (birth, or inode change on Linux) and access
// times of path, falling back to the modification time.
func fileTimes(path string, info os.FileInfo) (created, accessed time.Time) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime(), info.ModTime()
	}
	return birthTime(&st), time.Unix(st.Atim.Unix())
}
