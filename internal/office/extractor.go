// Package office renders Word, Excel, PowerPoint and PDF documents as bounded
// plain text for the preview pane.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kk-code-lab/arangr/internal/logging"
)

// Kind is the document family handled by a backend.
type Kind int

const (
	Word Kind = iota
	Excel
	PowerPoint
	Pdf
)

type kindInfo struct {
	header  string
	noun    string
	library string
}

var kinds = map[Kind]kindInfo{
	Word:       {header: "📄 Word Document", noun: "document", library: "docx"},
	Excel:      {header: "📊 Excel Spreadsheet", noun: "spreadsheet", library: "excelize"},
	PowerPoint: {header: "📽️ PowerPoint Presentation", noun: "presentation", library: "pptx"},
	Pdf:        {header: "📕 PDF Document", noun: "PDF", library: "pdf"},
}

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Excel:
		return "excel"
	case PowerPoint:
		return "powerpoint"
	case Pdf:
		return "pdf"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a backend name (as used in configuration) onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "docx":
		return Word, nil
	case "excel", "xlsx":
		return Excel, nil
	case "powerpoint", "pptx":
		return PowerPoint, nil
	case "pdf":
		return Pdf, nil
	}
	return Word, fmt.Errorf("unknown document kind %q", s)
}

// ErrBackendUnavailable means no backend is registered for a kind.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrLegacyFormat marks pre-2007 OLE2 compound documents.
var ErrLegacyFormat = errors.New("legacy binary format is not supported")

// Line-oriented limits applied by the built-in backends.
const (
	MaxSheetRows    = 21
	MaxSheetColumns = 10
	MaxPDFPages     = 5
	MaxPDFPageChars = 1000

	rule = "──────────────────────────────"
)

// Backend extracts the body lines of a document. The header line is added by
// the Extractor.
type Backend func(ctx context.Context, path string) ([]string, error)

// Option configures an Extractor.
type Option func(*Extractor)

// WithBackend registers or replaces the backend for kind.
func WithBackend(kind Kind, b Backend) Option {
	return func(e *Extractor) { e.backends[kind] = b }
}

// WithoutBackend removes the backend for kind.
func WithoutBackend(kind Kind) Option {
	return func(e *Extractor) { delete(e.backends, kind) }
}

// Extractor dispatches documents to per-kind backends.
type Extractor struct {
	backends map[Kind]Backend
	log      *logging.Logger
}

// New returns an Extractor with the built-in backends registered.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		backends: map[Kind]Backend{
			Word:       extractWord,
			Excel:      extractExcel,
			PowerPoint: extractPowerPoint,
			Pdf:        extractPDF,
		},
		log: logging.Get("office"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether kind has a backend.
func (e *Extractor) Available(kind Kind) bool {
	_, ok := e.backends[kind]
	return ok
}

// Extract renders path as text. It never fails: a missing backend or an
// unreadable document is described in the returned text.
func (e *Extractor) Extract(ctx context.Context, path string, kind Kind) string {
	text, _ := e.Render(ctx, path, kind)
	return text
}

// Render is Extract that also reports the underlying failure, if any.
// The returned text is always displayable.
func (e *Extractor) Render(ctx context.Context, path string, kind Kind) (string, error) {
	info, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBackendUnavailable, kind)
	}
	backend, ok := e.backends[kind]
	if !ok {
		e.log.Warn("no backend registered", "kind", kind, "path", path)
		return fmt.Sprintf("%s\n\n⚠️ %s library not installed.", info.header, info.library),
			fmt.Errorf("%w: %s", ErrBackendUnavailable, kind)
	}

	lines, err := runBackend(ctx, backend, path)
	if err != nil {
		e.log.Debug("extraction failed", "kind", kind, "path", path, "err", err)
		return fmt.Sprintf("%s\n\n❌ Error reading %s: %v", info.header, info.noun, err), err
	}
	if kind == Pdf {
		return strings.Join(append([]string{info.header}, lines...), "\n"), nil
	}
	return strings.Join(append([]string{info.header + "\n"}, lines...), "\n"), nil
}

func runBackend(ctx context.Context, backend Backend, path string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkLegacy(path); err != nil {
		return nil, err
	}
	return backend(ctx, path)
}

var ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func checkLegacy(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	head := make([]byte, len(ole2Signature))
	n, _ := f.Read(head)
	if n == len(head) && bytes.Equal(head, ole2Signature) {
		return ErrLegacyFormat
	}
	return nil
}
