package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// formattingRuneLabels makes invisible bidi and zero-width characters visible
// so file names and contents cannot reorder or hide what is drawn.
var formattingRuneLabels = map[rune]string{
	0x061C: "⟪ALM⟫",
	0x200B: "⟪ZWSP⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0xFEFF: "⟪BOM⟫",
}

// sanitizeLine prepares one line of untrusted text for the terminal: tabs
// are expanded, control characters become '?', formatting runes get labels.
func sanitizeLine(text string) string {
	clean := true
	for _, ru := range text {
		if ru == '\t' || ru < 0x20 || ru == 0x7f {
			clean = false
			break
		}
		if _, ok := formattingRuneLabels[ru]; ok {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	column := 0
	for _, ru := range text {
		if label, ok := formattingRuneLabels[ru]; ok {
			b.WriteString(label)
			column += runewidth.StringWidth(label)
			continue
		}
		switch {
		case ru == '\t':
			spaces := tabWidth - column%tabWidth
			b.WriteString(strings.Repeat(" ", spaces))
			column += spaces
		case ru == '\r':
		case ru < 0x20 || ru == 0x7f:
			b.WriteByte('?')
			column++
		default:
			b.WriteRune(ru)
			column += runewidth.RuneWidth(ru)
		}
	}
	return b.String()
}

// splitLines splits text into sanitized display lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = sanitizeLine(line)
	}
	return lines
}

func measureTextWidth(text string) int {
	return runewidth.StringWidth(text)
}

// truncateTextToWidth cuts text to maxWidth columns, ending in an ellipsis
// when something was dropped.
func truncateTextToWidth(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(text, maxWidth, "…")
}

// truncateLeft keeps the end of text, which for paths is the useful part.
func truncateLeft(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth == 1 {
		return "…"
	}
	runes := []rune(text)
	width := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > maxWidth-1 {
			break
		}
		width += w
		start--
	}
	return "…" + string(runes[start:])
}

// wrapLine breaks a sanitized line into chunks no wider than width.
func wrapLine(line string, width int) []string {
	if width <= 0 {
		return nil
	}
	if line == "" || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var out []string
	var b strings.Builder
	current := 0
	for _, ru := range line {
		w := runewidth.RuneWidth(ru)
		if current+w > width && current > 0 {
			out = append(out, b.String())
			b.Reset()
			current = 0
		}
		b.WriteRune(ru)
		current += w
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// drawTextLine draws text at (startX, y) within maxWidth columns and returns
// the column after the last drawn cell.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	i := 0

	for i < len(runes) {
		mainc := runes[i]
		i++

		var combc []rune
		for i < len(runes) && runewidth.RuneWidth(runes[i]) == 0 && runes[i] >= 0x300 {
			combc = append(combc, runes[i])
			i++
		}

		w := runewidth.RuneWidth(mainc)
		if x-startX+w > maxWidth {
			break
		}
		r.screen.SetContent(x, y, mainc, combc, style)
		x += w
	}

	return x
}

func (r *Renderer) fillRow(startX, endX, y int, style tcell.Style) {
	for x := startX; x < endX; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}
