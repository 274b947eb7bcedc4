package fs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// PathEntry describes a single file or directory as seen by one stat call.
// Entries are values: a fresh listing produces fresh entries.
type PathEntry struct {
	Name      string
	FullPath  string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Modified  time.Time
	Created   time.Time
	Accessed  time.Time
	Extension string
	Mode      os.FileMode
}

// IsHidden reports whether the entry should be treated as hidden.
func (e PathEntry) IsHidden() bool {
	return IsHidden(e.FullPath, e.Name)
}

// Stat builds a PathEntry for path. Symlinks are followed for the directory
// test and size, but IsSymlink still reports the link itself.
func Stat(path string) (PathEntry, error) {
	linfo, err := os.Lstat(path)
	if err != nil {
		return PathEntry{}, err
	}
	return entryFromInfo(path, linfo), nil
}

func entryFromInfo(fullPath string, info os.FileInfo) PathEntry {
	isSymlink := info.Mode()&os.ModeSymlink != 0
	if isSymlink {
		if target, err := os.Stat(fullPath); err == nil {
			info = target
		}
	}

	created, accessed := fileTimes(fullPath, info)
	name := norm.NFC.String(info.Name())
	entry := PathEntry{
		Name:      name,
		FullPath:  fullPath,
		IsDir:     info.IsDir(),
		IsSymlink: isSymlink,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		Created:   created,
		Accessed:  accessed,
		Mode:      info.Mode(),
	}
	if !entry.IsDir {
		entry.Extension = strings.ToLower(filepath.Ext(name))
	}
	return entry
}
