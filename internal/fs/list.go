package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListOptions controls a directory listing.
type ListOptions struct {
	IncludeHidden bool
}

// Snapshot is an ordered listing of one directory: folders first, then files,
// each group sorted case-insensitively by name. Snapshots are replaced
// wholesale on every navigation or refresh.
type Snapshot struct {
	Dir     string
	Entries []PathEntry
}

// Counts returns the number of folders and files in the snapshot.
func (s Snapshot) Counts() (folders, files int) {
	for _, e := range s.Entries {
		if e.IsDir {
			folders++
		} else {
			files++
		}
	}
	return folders, files
}

// IndexOf returns the position of the entry with the given name, or -1.
func (s Snapshot) IndexOf(name string) int {
	for i, e := range s.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// ListError reports a directory that could not be listed.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// List reads dir and returns its snapshot. Permission or I/O failures fail
// the whole call; cancellation is checked between entries.
func List(ctx context.Context, dir string, opts ListOptions) (Snapshot, error) {
	dir = filepath.Clean(dir)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return Snapshot{}, &ListError{Path: dir, Err: err}
	}

	folders := make([]PathEntry, 0, len(dirEntries))
	files := make([]PathEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, &ListError{Path: dir, Err: err}
		}

		rawName := de.Name()
		fullPath := filepath.Join(dir, rawName)
		if ShouldHideFromListing(fullPath, rawName) {
			continue
		}
		if !opts.IncludeHidden && IsHidden(fullPath, rawName) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		entry := entryFromInfo(fullPath, info)
		if entry.IsDir {
			folders = append(folders, entry)
		} else {
			files = append(files, entry)
		}
	}

	SortEntries(folders)
	SortEntries(files)
	return Snapshot{Dir: dir, Entries: append(folders, files...)}, nil
}

// SortEntries sorts entries in place, case-insensitively by name. Names that
// fold to the same key keep a deterministic order by raw name.
func SortEntries(entries []PathEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		li, lj := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if li != lj {
			return li < lj
		}
		return entries[i].Name < entries[j].Name
	})
}
