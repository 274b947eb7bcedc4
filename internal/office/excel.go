package office

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

func extractExcel(ctx context.Context, path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		lines = append(lines, "\n📋 Sheet: "+sheet, rule)
		lines = append(lines, rows...)
	}
	return lines, nil
}

// sheetRows renders up to MaxSheetRows rows of a sheet, skipping rows whose
// cells are all blank.
func sheetRows(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []string
	for n := 0; n < MaxSheetRows && rows.Next(); n++ {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		if blankRow(cols) {
			continue
		}
		if len(cols) > MaxSheetColumns {
			cols = cols[:MaxSheetColumns]
		}
		out = append(out, strings.Join(cols, " | "))
	}
	return out, rows.Error()
}

func blankRow(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
