package render

import (
	"image"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/preview"
	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

const assistantTitle = "🤖 AI Assistant"

type imageCache struct {
	handle   *imageview.Handle
	scale    float64
	rotation int
	cols     int
	rows     int
	img      image.Image
}

// drawPreviewPanel renders the preview pane: the header block, the assistant
// reply when there is one, then either the picture or the text body.
func (r *Renderer) drawPreviewPanel(state *statepkg.AppState, startX, width int) {
	if width <= 0 {
		return
	}
	res := state.Preview
	if res == nil {
		return
	}

	top := 1
	bottom := 1 + state.BodyHeight()
	y := top

	headerStyle := tcell.StyleDefault.Foreground(r.theme.DimFg)
	for _, line := range splitLines(preview.Header(res)) {
		if y >= bottom {
			return
		}
		r.drawTextLine(startX+1, y, width-1, truncateTextToWidth(line, width-1), headerStyle)
		y++
	}
	y++

	switch state.PreviewState {
	case preview.StateLoading, preview.StateRequested:
		if y < bottom {
			r.drawTextLine(startX+1, y, width-1, "Loading preview…", tcell.StyleDefault.Foreground(r.theme.DimFg))
		}
		return
	}

	if state.AssistantReply != "" {
		y = r.drawAssistantReply(state.AssistantReply, startX, y, width, bottom)
	}

	if img := state.PreviewImage(); img != nil {
		imgTop := y
		imgRows := state.ImageRows()
		if imgTop+imgRows > bottom {
			imgRows = bottom - imgTop
		}
		if imgRows > 0 {
			r.drawImage(r.renderedImage(img, width, imgRows), startX, imgTop, width, imgRows)
			y = imgTop + imgRows
		}
		r.drawTextBlock(res.Body(), 0, startX, y+1, width, bottom, tcell.StyleDefault)
		return
	}

	style := tcell.StyleDefault.Foreground(r.theme.Foreground)
	if state.PreviewState == preview.StateFailed {
		style = tcell.StyleDefault.Foreground(r.theme.ErrorFg)
	}
	r.drawTextBlock(res.Body(), state.PreviewScrollOffset, startX, y, width, bottom, style)
}

func (r *Renderer) drawAssistantReply(reply string, startX, y, width, bottom int) int {
	titleStyle := tcell.StyleDefault.Foreground(r.theme.PromptFg).Bold(true)
	if y < bottom {
		r.drawTextLine(startX+1, y, width-1, assistantTitle, titleStyle)
		y++
	}
	y = r.drawTextBlock(reply, 0, startX, y, width, bottom, tcell.StyleDefault)
	if y < bottom {
		rule := strings.Repeat("─", max(0, width-2))
		r.drawTextLine(startX+1, y, width-1, rule, tcell.StyleDefault.Foreground(r.theme.SeparatorFg))
		y++
	}
	return y
}

// drawTextBlock draws text wrapped to the pane, starting at source line
// offset, and returns the row after the last one drawn.
func (r *Renderer) drawTextBlock(text string, offset, startX, y, width, bottom int, style tcell.Style) int {
	lines := splitLines(text)
	if offset > len(lines) {
		offset = len(lines)
	}
	for _, line := range lines[offset:] {
		for _, chunk := range wrapLine(line, width-1) {
			if y >= bottom {
				return y
			}
			r.drawTextLine(startX+1, y, width-1, chunk, style)
			y++
		}
	}
	return y
}

// renderedImage returns the part of the scaled bitmap for h visible in a
// cols x rows area of half-block cells, reusing the last one while the
// handle, its zoom and rotation, and the area are unchanged.
func (r *Renderer) renderedImage(h *imageview.Handle, cols, rows int) image.Image {
	c := &r.imageCache
	if c.handle == h && c.scale == h.Scale && c.rotation == h.Rotation &&
		c.cols == cols && c.rows == rows && c.img != nil {
		return c.img
	}
	*c = imageCache{
		handle:   h,
		scale:    h.Scale,
		rotation: h.Rotation,
		cols:     cols,
		rows:     rows,
		img:      h.RenderWindow(cols, rows*2),
	}
	return c.img
}

// drawImage paints img with half-block cells: each cell shows two pixels,
// the upper one as foreground and the lower one as background. The picture
// is centered in the area and cropped around its center when larger.
func (r *Renderer) drawImage(img image.Image, startX, startY, cols, rows int) {
	if img == nil || cols <= 0 || rows <= 0 {
		return
	}
	b := img.Bounds()
	pxW, pxH := cols, rows*2

	srcX, dstX := centerSpan(b.Dx(), pxW)
	srcY, dstY := centerSpan(b.Dy(), pxH)
	dstY &^= 1
	drawW := min(b.Dx(), pxW)
	drawH := min(b.Dy(), pxH)

	for py := 0; py < drawH; py += 2 {
		for px := 0; px < drawW; px++ {
			x := b.Min.X + srcX + px
			top := rgbColor(img, x, b.Min.Y+srcY+py)
			style := tcell.StyleDefault.Foreground(top)
			if py+1 < drawH {
				style = style.Background(rgbColor(img, x, b.Min.Y+srcY+py+1))
			}
			r.screen.SetContent(startX+dstX+px, startY+(dstY+py)/2, '▀', nil, style)
		}
	}
}

// centerSpan returns the source offset and destination offset that center
// a span of size src within dst.
func centerSpan(src, dst int) (srcOff, dstOff int) {
	if src > dst {
		return (src - dst) / 2, 0
	}
	return 0, (dst - src) / 2
}

func rgbColor(img image.Image, x, y int) tcell.Color {
	cr, cg, cb, ca := img.At(x, y).RGBA()
	if ca == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(cr>>8), int32(cg>>8), int32(cb>>8))
}
