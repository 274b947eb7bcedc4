package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/arangr/internal/format"
	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

const (
	// AppTitle leads the header row; the breadcrumb follows after a space.
	AppTitle = "arangr"
	// BreadcrumbSeparator joins path segments in the header.
	BreadcrumbSeparator = " › "

	maxCachedFolderIcons = 4096
)

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme

	// folderIcons caches content-aware folder icons by path; an entry is
	// reused while the folder's modification time is unchanged.
	folderIcons map[string]folderIcon
	imageCache  imageCache
}

type folderIcon struct {
	modified time.Time
	icon     string
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen:      screen,
		theme:       GetColorTheme(),
		folderIcons: make(map[string]folderIcon),
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()

	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}

	listWidth := statepkg.ListWidth(w)

	r.drawHeader(state, w)
	r.drawFileList(state, listWidth)
	if listWidth < w {
		sepStyle := tcell.StyleDefault.Foreground(r.theme.SeparatorFg)
		for y := 1; y < h-1; y++ {
			r.screen.SetContent(listWidth, y, '│', nil, sepStyle)
		}
	}
	r.drawPreviewPanel(state, listWidth+1, w-listWidth-1)
	r.drawStatusLine(state, w, h)
	if state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
	}

	r.screen.Show()
}

// drawHeader renders the top bar with title and breadcrumb
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)

	endX := r.drawTextLine(0, 0, w, AppTitle, headerStyle.Bold(true))
	if endX < w {
		r.screen.SetContent(endX, 0, ' ', nil, headerStyle)
		endX++
	}

	segments := FormatBreadcrumbSegments(state.CurrentPath)
	lastIdx := len(segments) - 1
	if lastIdx > 0 && endX < w {
		prefix := sanitizeLine(strings.Join(segments[:lastIdx], BreadcrumbSeparator) + BreadcrumbSeparator)
		lastWidth := measureTextWidth(segments[lastIdx])
		prefix = truncateLeft(prefix, w-endX-lastWidth)
		endX = r.drawTextLine(endX, 0, w-endX, prefix, headerStyle)
	}
	if endX < w {
		last := truncateTextToWidth(sanitizeLine(segments[lastIdx]), w-endX)
		endX = r.drawTextLine(endX, 0, w-endX, last, headerStyle.Bold(true))
	}

	r.fillRow(endX, w, 0, headerStyle)
}

// FormatBreadcrumbSegments splits path into the segments shown in the header.
// A leading "/" is its own segment.
func FormatBreadcrumbSegments(path string) []string {
	if path == "" {
		return []string{"/"}
	}

	slashed := filepath.ToSlash(filepath.Clean(path))
	if slashed == "/" || slashed == "." {
		return []string{"/"}
	}

	var segments []string
	if strings.HasPrefix(slashed, "/") {
		segments = append(segments, "/")
		slashed = strings.TrimPrefix(slashed, "/")
	}
	for _, part := range strings.Split(slashed, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return []string{slashed}
	}
	return segments
}

// drawFileList renders the listing column with one row per entry.
func (r *Renderer) drawFileList(state *statepkg.AppState, width int) {
	if width <= 0 {
		return
	}
	files := state.Files()
	top := 1
	rows := state.ListHeight()

	if len(files) == 0 {
		msg := "(empty)"
		if state.DirectoryLoading() {
			msg = "Loading…"
		}
		r.drawTextLine(1, top, width-1, msg, tcell.StyleDefault.Foreground(r.theme.DimFg))
		return
	}

	for row := 0; row < rows; row++ {
		idx := state.ScrollOffset + row
		if idx >= len(files) {
			break
		}
		entry := files[idx]
		y := top + row

		style := r.entryStyle(entry)
		selected := idx == state.SelectedIndex
		if selected {
			style = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg).Bold(true)
			r.fillRow(0, width, y, style)
		}

		label := r.icon(entry) + " " + sanitizeLine(entry.Name)
		if entry.IsDir {
			label += "/"
		} else if entry.IsSymlink {
			label += "@"
		}

		sizeText := ""
		if !entry.IsDir {
			sizeText = humanize.IBytes(uint64(entry.Size))
		}
		sizeWidth := measureTextWidth(sizeText)
		nameWidth := width - 1
		if sizeWidth > 0 && width-sizeWidth-3 >= 8 {
			nameWidth = width - sizeWidth - 3
		} else {
			sizeText = ""
		}

		r.drawTextLine(1, y, nameWidth, truncateTextToWidth(label, nameWidth), style)
		if sizeText != "" {
			sizeStyle := style
			if !selected {
				sizeStyle = tcell.StyleDefault.Foreground(r.theme.DimFg)
			}
			r.drawTextLine(width-sizeWidth-1, y, sizeWidth, sizeText, sizeStyle)
		}
	}
}

func (r *Renderer) entryStyle(entry statepkg.FileEntry) tcell.Style {
	style := tcell.StyleDefault.Foreground(r.theme.FileFg)
	switch {
	case entry.IsSymlink:
		style = style.Foreground(r.theme.SymlinkFg)
	case entry.IsDir:
		style = style.Foreground(r.theme.DirectoryFg).Bold(true)
	}
	if entry.IsHidden() {
		style = style.Foreground(r.theme.HiddenFg)
	}
	return style
}

func (r *Renderer) icon(entry statepkg.FileEntry) string {
	if !entry.IsDir {
		return format.FileIcon(entry)
	}
	if cached, ok := r.folderIcons[entry.FullPath]; ok && cached.modified.Equal(entry.Modified) {
		return cached.icon
	}
	if len(r.folderIcons) >= maxCachedFolderIcons {
		clear(r.folderIcons)
	}
	icon := format.FolderIcon(entry.FullPath)
	r.folderIcons[entry.FullPath] = folderIcon{modified: entry.Modified, icon: icon}
	return icon
}

// drawStatusLine renders the bottom bar. An active prompt takes the whole
// line; otherwise it shows counts, then the error, status or key hints.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	y := h - 1
	if y < 1 {
		return
	}
	style := tcell.StyleDefault.Background(r.theme.StatusBg).Foreground(r.theme.StatusFg)
	r.fillRow(0, w, y, style)

	if state.Prompt.Active() {
		label := promptLabel(state.Prompt.Kind)
		input := sanitizeLine(string(state.Prompt.Input))
		x := r.drawTextLine(0, y, w, label, style.Foreground(r.theme.PromptFg).Bold(true))
		text := truncateLeft(input, w-x-1)
		x = r.drawTextLine(x, y, w-x, text, style)
		if x < w {
			r.screen.ShowCursor(x, y)
		}
		return
	}
	r.screen.HideCursor()

	folders, files := state.Snapshot.Counts()
	left := fmt.Sprintf(" 📁 %d  📄 %d", folders, files)
	if state.ShowHidden {
		left += "  ·hidden"
	}
	if state.DirectoryLoading() {
		left += "  ⏳"
	}
	x := r.drawTextLine(0, y, w, left, style)
	x = r.drawTextLine(x, y, w-x, "  ", style)

	switch {
	case state.LastError != nil:
		msg := sanitizeLine(state.LastError.Error())
		r.drawTextLine(x, y, w-x, truncateTextToWidth(msg, w-x), style.Foreground(r.theme.ErrorFg).Bold(true))
	case state.Status != "":
		msg := sanitizeLine(state.Status)
		r.drawTextLine(x, y, w-x, truncateTextToWidth(msg, w-x), style.Foreground(r.theme.NoticeFg))
	default:
		r.drawTextLine(x, y, w-x, truncateTextToWidth(footerHints(state), w-x), style)
	}
}

func promptLabel(kind statepkg.PromptKind) string {
	switch kind {
	case statepkg.PromptRename:
		return "Rename: "
	case statepkg.PromptAsk:
		return "Ask AI: "
	}
	return "> "
}
