//go:build windows

package fs

// HiddenMarker is the leading name character that marks an entry as hidden
// when the hidden attribute cannot be read.
const HiddenMarker = '.'

// IsHidden checks the hidden attribute, falling back to the name marker.
func IsHidden(fullPath string, name string) bool {
	if fullPath == "" && name == "" {
		return false
	}
	attrs, err := getFileAttributes(fullPath, name)
	if err != nil {
		return len(name) > 0 && name[0] == HiddenMarker
	}
	return attrs&fileAttributeHidden != 0
}
