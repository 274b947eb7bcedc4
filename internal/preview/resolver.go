// Package preview turns a selected path into a displayable preview: it
// classifies the file, applies the size ceilings and dispatches to the text,
// office or image pipelines. Failures become displayable results rather than
// errors.
package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/kk-code-lab/arangr/internal/format"
	"github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/logging"
	"github.com/kk-code-lab/arangr/internal/office"
)

const (
	largeFileNotice      = "⚠️ Large file detected - showing preview"
	displayTruncMarker   = "\n\n... [Content truncated for display]"
	aiContextTruncMarker = "\n\n[Content truncated - large file]"
)

// Request identifies one preview job. Generation stamps the selection that
// asked for it.
type Request struct {
	Path       string
	Generation uint64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtractor replaces the office extractor.
func WithExtractor(e *office.Extractor) Option {
	return func(r *Resolver) { r.office = e }
}

// Resolver builds previews. It holds no per-request state and is safe for
// concurrent use.
type Resolver struct {
	limits Limits
	office *office.Extractor
	log    *logging.Logger
}

// NewResolver returns a Resolver using limits; zero fields take defaults.
func NewResolver(limits Limits, opts ...Option) *Resolver {
	r := &Resolver{
		limits: limits.withDefaults(),
		log:    logging.Get("preview"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.office == nil {
		r.office = office.New()
	}
	return r
}

// Limits returns the effective ceilings.
func (r *Resolver) Limits() Limits { return r.limits }

// Resolve builds the preview for req. It never returns nil.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Result {
	res := &Result{
		Path:       req.Path,
		Generation: req.Generation,
		Name:       filepath.Base(req.Path),
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		res.Err = failureFromIO(req.Path, err)
		r.log.Debug("stat failed", "path", req.Path, "err", err)
		return res
	}
	res.Size = info.Size()
	res.Modified = info.ModTime()

	if info.IsDir() {
		res.IsDir = true
		r.resolveDirectory(ctx, res)
		return res
	}

	if res.Size > r.limits.MaxSize {
		res.Err = &Failure{
			Kind: ErrOversizeRefused,
			Message: fmt.Sprintf("⚠️ File too large for preview (%s > %s limit)",
				humanize.IBytes(uint64(res.Size)), humanize.IBytes(uint64(r.limits.MaxSize))),
		}
		return res
	}
	if res.Size > r.limits.LargeFile {
		res.Notice = largeFileNotice
	}

	res.Classification = format.Classify(req.Path)
	switch res.Classification {
	case format.Text:
		r.resolveText(res)
	case format.Image:
		r.resolveImage(res)
	case format.OfficeWord:
		r.resolveDocument(ctx, res, office.Word)
	case format.OfficeExcel:
		r.resolveDocument(ctx, res, office.Excel)
	case format.OfficePowerPoint:
		r.resolveDocument(ctx, res, office.PowerPoint)
	case format.Pdf:
		r.resolveDocument(ctx, res, office.Pdf)
	case format.Binary:
		ext := filepath.Ext(req.Path)
		res.Content = BinaryDescriptor{
			Label:     format.BinaryLabel(ext),
			Extension: ext,
			Size:      res.Size,
			Hint:      format.BinaryHint(ext),
		}
	default:
		panic(fmt.Sprintf("preview: unhandled classification %v", res.Classification))
	}

	if res.Err == nil {
		res.AIContext = r.aiContext(res)
	}
	r.log.Debug("resolved", "path", req.Path, "class", res.Classification, "truncated", res.Truncated)
	return res
}

func (r *Resolver) resolveDirectory(ctx context.Context, res *Result) {
	snap, err := fs.List(ctx, res.Path, fs.ListOptions{IncludeHidden: true})
	if err != nil {
		var listErr *fs.ListError
		if errors.As(err, &listErr) {
			err = listErr.Err
		}
		res.Err = failureFromIO(res.Path, err)
		return
	}
	folders, files := snap.Counts()
	res.Content = DirectorySummary{
		Description: format.Describe(res.Path),
		Folders:     folders,
		Files:       files,
		Icon:        format.FolderIcon(res.Path),
	}
}

func (r *Resolver) resolveText(res *Result) {
	decoded, err := fs.DecodeFile(res.Path, r.limits.decodeOptions())
	if err != nil {
		res.Err = failureFromIO(res.Path, err)
		return
	}
	body, cut := TruncateForDisplay(decoded.Content, r.limits.DisplayChars)
	res.Content = TextBody{Body: body, Encoding: decoded.Encoding}
	res.Truncated = decoded.Truncated || cut
}

func (r *Resolver) resolveImage(res *Result) {
	h, err := imageview.Load(res.Path,
		imageview.WithZoomBounds(r.limits.MinZoom, r.limits.MaxZoom),
		imageview.WithMaxPixels(r.limits.MaxImagePixels))
	if err != nil {
		cause := err
		var decodeErr *imageview.DecodeError
		if errors.As(err, &decodeErr) {
			cause = decodeErr.Err
		}
		if errors.Is(cause, os.ErrNotExist) || errors.Is(cause, os.ErrPermission) {
			res.Err = failureFromIO(res.Path, cause)
			return
		}
		res.Err = &Failure{
			Kind:    ErrDecodeFailure,
			Message: fmt.Sprintf("🖼️ Image file detected but couldn't read properties: %v", cause),
			Err:     err,
		}
		return
	}
	res.Content = ImageContent{Handle: h, Summary: ImageSummary(h, res.Size)}
}

func (r *Resolver) resolveDocument(ctx context.Context, res *Result, kind office.Kind) {
	text, err := r.office.Render(ctx, res.Path, kind)
	body, cut := TruncateForDisplay(text, r.limits.DisplayChars)
	res.Content = DocumentText{Kind: kind, Body: body}
	res.Truncated = cut
	if err != nil {
		res.Err = &Failure{Kind: ErrDecodeFailure, Message: body, Err: err}
	}
}

func (r *Resolver) aiContext(res *Result) string {
	if res.Content == nil {
		return ""
	}
	text := res.Content.Text()
	if res.Size > r.limits.LargeFile {
		if cut, ok := fs.TruncateRunes(text, r.limits.AIExcerptChars); ok {
			return cut + aiContextTruncMarker
		}
	}
	return text
}

// ImageSummary is the information block shown for images.
func ImageSummary(h *imageview.Handle, size int64) string {
	return fmt.Sprintf("🖼️ Image Information:\n\n"+
		"📏 Dimensions: %d × %d pixels\n"+
		"🎨 Color Mode: %s\n"+
		"📁 Format: %s\n"+
		"💾 File Size: %s",
		h.Width, h.Height, h.Mode, h.Format, humanize.IBytes(uint64(size)))
}

// TruncateForDisplay cuts s to limit characters and appends the display
// truncation marker. The boolean reports whether a cut happened.
func TruncateForDisplay(s string, limit int) (string, bool) {
	cut, ok := fs.TruncateRunes(s, limit)
	if !ok {
		return s, false
	}
	return cut + displayTruncMarker, true
}
