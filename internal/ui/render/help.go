package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	hiddenDesc := "Show hidden files"
	if state != nil && state.ShowHidden {
		hiddenDesc = "Hide hidden files"
	}

	sections := []helpOverlaySection{
		{
			title: "Navigation",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ or k/j", desc: "Move selection"},
				{keys: "Home / End", desc: "First / last entry"},
				{keys: "↵, → or l", desc: "Enter directory"},
				{keys: "←, h or ⌫", desc: "Parent directory"},
				{keys: "[ / ]", desc: "History back/forward"},
				{keys: "~", desc: "Go home"},
			},
		},
		{
			title: "Preview",
			entries: []helpOverlayEntry{
				{keys: "PgUp / PgDn", desc: "Scroll preview"},
				{keys: "+ / -", desc: "Zoom image"},
				{keys: "f", desc: "Fit image to pane"},
				{keys: "o", desc: "Rotate image"},
			},
		},
		{
			title: "Actions",
			entries: []helpOverlayEntry{
				{keys: ".", desc: hiddenDesc},
				{keys: "r", desc: "Refresh directory"},
				{keys: "R or F2", desc: "Rename selection"},
				{keys: "O", desc: "Open with default application"},
				{keys: "a", desc: "Ask the AI assistant"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, fmt.Sprintf("  %-14s %s", entry.keys, entry.desc))
		}
	}
	return lines
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillRow(0, w, y, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.StatusBg).Foreground(r.theme.StatusFg).Bold(true)
	titleStart := 0
	if titleWidth := measureTextWidth(title); w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	for _, line := range buildHelpOverlayLines(state) {
		if row >= h-1 {
			break
		}
		text := truncateTextToWidth(strings.TrimRight(line, " "), w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	if h > 0 {
		r.fillRow(0, w, h-1, headerStyle)
		r.drawTextLine(0, h-1, w, truncateTextToWidth("? toggle · Esc/q close", w), headerStyle)
	}
}

// footerHints returns the key hints shown when the status line is idle.
func footerHints(state *statepkg.AppState) string {
	if state.PreviewImage() != nil {
		return "+/-: zoom  f: fit  o: rotate  ?: help  q: quit"
	}
	return "↵: open  ←: up  [ ]: history  .: hidden  R: rename  a: ask  ?: help  q: quit"
}
