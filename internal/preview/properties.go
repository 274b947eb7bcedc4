package preview

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kk-code-lab/arangr/internal/format"
	"github.com/kk-code-lab/arangr/internal/fs"
)

const timestampLayout = "2006-01-02 15:04:05"

// Properties is the detail panel for one path.
type Properties struct {
	Name        string
	Path        string
	Dir         string
	Type        string
	Size        int64
	Extension   string
	Modified    time.Time
	Created     time.Time
	Accessed    time.Time
	Permissions string
	Hash        string
	IsImage     bool
	IsText      bool
}

// ReadProperties stats path and gathers its properties. Files up to
// limits.HashMaxSize get an MD5 prefix.
func ReadProperties(path string, limits Limits) (Properties, error) {
	limits = limits.withDefaults()
	entry, err := fs.Stat(path)
	if err != nil {
		return Properties{}, err
	}

	p := Properties{
		Name:        entry.Name,
		Path:        path,
		Dir:         filepath.Dir(path),
		Type:        format.Describe(path),
		Size:        entry.Size,
		Extension:   entry.Extension,
		Modified:    entry.Modified,
		Created:     entry.Created,
		Accessed:    entry.Accessed,
		Permissions: fmt.Sprintf("%03o", entry.Mode.Perm()),
	}
	if entry.IsDir {
		p.Hash = "Not applicable"
		return p, nil
	}

	class := format.Classify(path)
	p.IsImage = class == format.Image
	p.IsText = class == format.Text

	switch {
	case entry.Size > limits.HashMaxSize:
		p.Hash = "Skipped (file larger than " + humanize.IBytes(uint64(limits.HashMaxSize)) + ")"
	default:
		sum, err := fs.HashPrefix(path)
		if err != nil {
			p.Hash = "Unavailable"
		} else {
			p.Hash = sum + "..."
		}
	}
	return p, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// String renders the panel.
func (p Properties) String() string {
	ext := p.Extension
	if ext == "" {
		ext = "None"
	}
	available := "Limited"
	if p.IsText || p.IsImage {
		available = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 File Properties: %s\n\n", p.Name)
	b.WriteString("📋 Basic Information:\n")
	fmt.Fprintf(&b, "    📁 Name: %s\n", p.Name)
	fmt.Fprintf(&b, "    🏷️ Type: %s\n", p.Type)
	fmt.Fprintf(&b, "    📏 Size: %s (%s bytes)\n", humanize.IBytes(uint64(p.Size)), humanize.Comma(p.Size))
	fmt.Fprintf(&b, "    🔗 Extension: %s\n\n", ext)
	b.WriteString("📅 Timestamps:\n")
	fmt.Fprintf(&b, "    📝 Modified: %s\n", p.Modified.Format(timestampLayout))
	fmt.Fprintf(&b, "    📄 Created: %s\n", p.Created.Format(timestampLayout))
	fmt.Fprintf(&b, "    👁️ Accessed: %s\n\n", p.Accessed.Format(timestampLayout))
	b.WriteString("🔐 Security:\n")
	fmt.Fprintf(&b, "    🔑 Permissions: %s\n", p.Permissions)
	fmt.Fprintf(&b, "    🔒 Hash (MD5): %s\n\n", p.Hash)
	b.WriteString("📍 Location:\n")
	fmt.Fprintf(&b, "    📂 Full Path: %s\n", p.Path)
	fmt.Fprintf(&b, "    📁 Directory: %s\n\n", p.Dir)
	b.WriteString("🎯 Content Type:\n")
	fmt.Fprintf(&b, "    🖼️ Image File: %s\n", yesNo(p.IsImage))
	fmt.Fprintf(&b, "    📝 Text File: %s\n", yesNo(p.IsText))
	fmt.Fprintf(&b, "    📊 Preview Available: %s\n", available)
	return b.String()
}
