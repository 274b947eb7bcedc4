package office

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxPartSize bounds how much of a single XML part is decompressed.
const maxPartSize = 64 << 20

func openPart(zr *zip.ReadCloser, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("missing part %s", name)
}

type docTable struct {
	rows [][]string
}

// wordBody walks word/document.xml. Body paragraphs are collected in order;
// tables are collected separately so they can be rendered after the text.
type wordBody struct {
	paragraphs []string
	tables     []docTable

	para       strings.Builder
	inPara     bool
	inText     bool
	tableDepth int
	row        []string
	cell       []string
}

func (w *wordBody) start(el xml.StartElement) {
	switch el.Name.Local {
	case "tbl":
		w.tableDepth++
		if w.tableDepth == 1 {
			w.tables = append(w.tables, docTable{})
		}
	case "tr":
		if w.tableDepth == 1 {
			w.row = w.row[:0]
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cell = w.cell[:0]
		}
	case "p":
		w.inPara = true
		w.para.Reset()
	case "t":
		w.inText = w.inPara
	case "tab":
		if w.inPara {
			w.para.WriteByte('\t')
		}
	case "br", "cr":
		if w.inPara {
			w.para.WriteByte('\n')
		}
	}
}

func (w *wordBody) end(el xml.EndElement) {
	switch el.Name.Local {
	case "t":
		w.inText = false
	case "p":
		w.inPara = false
		text := w.para.String()
		if w.tableDepth > 0 {
			w.cell = append(w.cell, text)
			return
		}
		if strings.TrimSpace(text) != "" {
			w.paragraphs = append(w.paragraphs, text)
		}
	case "tc":
		if w.tableDepth == 1 {
			w.row = append(w.row, strings.TrimSpace(strings.Join(w.cell, "\n")))
		}
	case "tr":
		if w.tableDepth == 1 {
			t := &w.tables[len(w.tables)-1]
			t.rows = append(t.rows, append([]string(nil), w.row...))
		}
	case "tbl":
		w.tableDepth--
	}
}

func extractWord(ctx context.Context, path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()

	rc, err := openPart(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	var body wordBody
	dec := xml.NewDecoder(io.LimitReader(rc, maxPartSize))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			body.start(t)
		case xml.EndElement:
			body.end(t)
		case xml.CharData:
			if body.inText {
				body.para.Write(t)
			}
		}
	}

	lines := append([]string(nil), body.paragraphs...)
	for _, table := range body.tables {
		lines = append(lines, "\n📊 Table:")
		for _, row := range table.rows {
			lines = append(lines, strings.Join(row, " | "))
		}
	}
	return lines, nil
}

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type slideFile struct {
	num  int
	file *zip.File
}

func extractPowerPoint(ctx context.Context, path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()

	var slides []slideFile
	for _, f := range zr.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	lines := []string{fmt.Sprintf("📊 Total Slides: %d", len(slides)), rule}
	for i, slide := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shapes, err := slideShapes(slide.file)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		lines = append(lines, fmt.Sprintf("\n🔸 Slide %d:", i+1))
		for _, text := range shapes {
			lines = append(lines, "  • "+text)
		}
	}
	return lines, nil
}

// slideShapes returns the trimmed, non-empty text of every shape on a slide.
// Paragraphs inside one shape are joined with newlines.
func slideShapes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	var (
		shapes     []string
		depth      int
		paragraphs []string
		para       strings.Builder
		inText     bool
	)
	dec := xml.NewDecoder(io.LimitReader(rc, maxPartSize))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp", "graphicFrame":
				depth++
				if depth == 1 {
					paragraphs = paragraphs[:0]
				}
			case "p":
				para.Reset()
			case "t":
				inText = depth > 0
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth > 0 {
					paragraphs = append(paragraphs, para.String())
				}
			case "sp", "graphicFrame":
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(strings.Join(paragraphs, "\n")); text != "" {
						shapes = append(shapes, text)
					}
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return shapes, nil
}
