package preview

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kk-code-lab/arangr/internal/format"
	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/office"
)

// State is the lifecycle of one preview request.
type State int

const (
	StateRequested State = iota
	StateLoading
	StateDisplayed
	StateSuperseded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateLoading:
		return "loading"
	case StateDisplayed:
		return "displayed"
	case StateSuperseded:
		return "superseded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrorKind classifies a failed preview.
type ErrorKind int

const (
	ErrNotFound ErrorKind = iota + 1
	ErrPermissionDenied
	ErrOversizeRefused
	ErrDecodeFailure
	ErrReadFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not found"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrOversizeRefused:
		return "oversize"
	case ErrDecodeFailure:
		return "decode failure"
	case ErrReadFailure:
		return "read failure"
	}
	return "none"
}

// Failure is the displayable error attached to a Result.
type Failure struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return f.Kind.String()
}

func (f *Failure) Unwrap() error { return f.Err }

func failureFromIO(path string, err error) *Failure {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Failure{Kind: ErrNotFound, Message: "❌ File not found: " + path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &Failure{Kind: ErrPermissionDenied, Message: "🔒 Permission denied: " + path, Err: err}
	}
	return &Failure{Kind: ErrReadFailure, Message: fmt.Sprintf("❌ Error reading file: %v", err), Err: err}
}

// Content is the rendered body of a preview.
type Content interface {
	Text() string
	isContent()
}

// TextBody is decoded file text.
type TextBody struct {
	Body     string
	Encoding string
}

func (t TextBody) Text() string { return t.Body }
func (TextBody) isContent()     {}

// ImageContent wraps a decoded image and its information block.
type ImageContent struct {
	Handle  *imageview.Handle
	Summary string
}

func (c ImageContent) Text() string { return c.Summary }
func (ImageContent) isContent()     {}

// DocumentText is the plain-text rendering of an office document.
type DocumentText struct {
	Kind office.Kind
	Body string
}

func (d DocumentText) Text() string { return d.Body }
func (DocumentText) isContent()     {}

// BinaryDescriptor stands in for files that cannot be rendered.
type BinaryDescriptor struct {
	Label     string
	Extension string
	Size      int64
	Hint      string
}

func (b BinaryDescriptor) Text() string {
	ext := strings.ToUpper(b.Extension)
	if ext == "" {
		ext = "None"
	}
	lines := []string{
		b.Label,
		"",
		"📊 File Size: " + humanize.IBytes(uint64(b.Size)),
		"🏷️ Extension: " + ext,
		"",
		"ℹ️ This is a binary file that cannot be displayed as text.",
	}
	if b.Hint != "" {
		lines = append(lines, "", b.Hint)
	}
	return strings.Join(lines, "\n")
}

func (BinaryDescriptor) isContent() {}

// DirectorySummary describes a selected folder.
type DirectorySummary struct {
	Description string
	Folders     int
	Files       int
	Icon        string
}

func (d DirectorySummary) Text() string {
	return fmt.Sprintf("%s %s\n\n📁 Folders: %d\n📄 Files: %d", d.Icon, d.Description, d.Folders, d.Files)
}

func (DirectorySummary) isContent() {}

// Result is the immutable outcome of resolving one path.
type Result struct {
	Path           string
	Generation     uint64
	Name           string
	Size           int64
	Modified       time.Time
	IsDir          bool
	Classification format.Classification

	Content   Content
	Truncated bool
	Err       *Failure
	Notice    string
	AIContext string
}

// Body is what the display shows under the header.
func (r *Result) Body() string {
	if r == nil {
		return ""
	}
	if r.Err != nil && r.Content == nil {
		return r.Err.Message
	}
	if r.Content == nil {
		return ""
	}
	return r.Content.Text()
}

// Image returns the image handle, if the result holds one.
func (r *Result) Image() *imageview.Handle {
	if r == nil {
		return nil
	}
	if c, ok := r.Content.(ImageContent); ok {
		return c.Handle
	}
	return nil
}

// Failed reports whether the result carries an error.
func (r *Result) Failed() bool {
	return r != nil && r.Err != nil
}

const headerRule = "──────────────────────────────────────────────────"

// Header is the block shown above preview content: name, size, modification
// time, path, a rule and the large-file notice when present.
func Header(r *Result) string {
	if r == nil {
		return ""
	}
	lines := []string{
		"📋 " + r.Name,
		"📊 " + humanize.IBytes(uint64(r.Size)),
		"📅 " + r.Modified.Format("2006-01-02 15:04:05"),
		"📁 " + r.Path,
		headerRule,
	}
	if r.Notice != "" {
		lines = append(lines, r.Notice, "")
	}
	return strings.Join(lines, "\n")
}
