package office

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kk-code-lab/arangr/internal/fs"
)

func extractPDF(ctx context.Context, path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	total := reader.NumPage()
	lines := []string{fmt.Sprintf("📊 Total Pages: %d", total), rule}

	shown := min(total, MaxPDFPages)
	for i := 1; i <= shown; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(reader, i)
		switch {
		case err != nil:
			lines = append(lines, fmt.Sprintf("\n📄 Page %d: Error extracting text - %v", i, err))
		case text == "":
			lines = append(lines, fmt.Sprintf("\n📄 Page %d: (No extractable text)", i))
		default:
			lines = append(lines, fmt.Sprintf("\n📄 Page %d:", i), firstRunes(text, MaxPDFPageChars))
		}
	}
	if total > MaxPDFPages {
		lines = append(lines, fmt.Sprintf("\n... and %d more pages", total-MaxPDFPages))
	}
	return lines, nil
}

// pageText extracts one page. Malformed pages make the pdf package panic, so
// the panic is turned into an error for that page only.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%v", r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	var b strings.Builder
	for _, item := range page.Content().Text {
		b.WriteString(item.S)
	}
	return strings.TrimSpace(b.String()), nil
}

func firstRunes(s string, limit int) string {
	cut, _ := fs.TruncateRunes(s, limit)
	return cut
}
