//go:build !windows

package fs

// HiddenMarker is the leading name character that marks an entry as hidden.
const HiddenMarker = '.'

// IsHidden checks if a file is hidden on this platform (Unix-like)
func IsHidden(_ string, name string) bool {
	return len(name) > 0 && name[0] == HiddenMarker
}
