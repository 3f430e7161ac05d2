package grid

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
)

func decodeWorkbook(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, statement.ErrEmptyInput
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", statement.ErrMalformedInput, err)
	}
	defer f.Close()

	sheet, raw := pickSheet(f)
	if sheet == "" || len(raw) == 0 {
		return nil, statement.ErrEmptyInput
	}

	var rows [][]Cell
	for r, record := range raw {
		row := make([]Cell, len(record))
		empty := true
		for c, formatted := range record {
			cell := typedCell(f, sheet, r, c, formatted)
			row[c] = cell
			if !cell.IsEmpty() {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, statement.ErrEmptyInput
	}
	return &Grid{Rows: rows}, nil
}

// pickSheet returns the sheet with the most non-empty rows. Statement exports
// occasionally carry a cover or summary sheet before the data sheet.
func pickSheet(f *excelize.File) (string, [][]string) {
	var (
		bestName string
		bestRows [][]string
		bestN    int
	)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		n := 0
		for _, row := range rows {
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					n++
					break
				}
			}
		}
		if n > bestN {
			bestName, bestRows, bestN = name, rows, n
		}
	}
	return bestName, bestRows
}

// typedCell classifies a workbook cell using its raw stored value. Numeric
// cells carry the raw decimal (always dot-separated in the container), and
// date-styled serials are converted to a concrete time. Everything else
// stays text. Date-ness comes from the cell's number format, never from the
// rendered text: currency and accounting formats also render non-numeric
// text around a numeric raw value.
func typedCell(f *excelize.File, sheet string, row, col int, formatted string) Cell {
	formatted = strings.TrimSpace(formatted)
	if formatted == "" {
		return Cell{Kind: Empty}
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{Kind: Text, Raw: formatted}
	}
	raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{Kind: Text, Raw: formatted}
	}

	value, derr := decimal.NewFromString(strings.TrimSpace(raw))
	if derr != nil {
		return Cell{Kind: Text, Raw: formatted}
	}

	if isDateStyle(f, sheet, axis) {
		serial, _ := value.Float64()
		if t, terr := excelize.ExcelDateToTime(serial, false); terr == nil && t.Year() >= 1900 && t.Year() <= 2200 {
			return Cell{Kind: DateTime, Raw: formatted, Time: t}
		}
	}

	return Cell{Kind: Number, Raw: formatted, Value: value}
}

// isDateStyle reports whether the cell's number format renders a date or a
// time.
func isDateStyle(f *excelize.File, sheet, axis string) bool {
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return formatHasDateTokens(*style.CustomNumFmt)
	}
	return builtInDateFormats[style.NumFmt]
}

// builtInDateFormats are the OOXML built-in number format IDs that render
// dates or times.
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 27: true, 28: true, 29: true, 30: true, 31: true,
	32: true, 33: true, 34: true, 35: true, 36: true, 45: true, 46: true,
	47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

// formatHasDateTokens scans a custom number format for date/time tokens.
// Quoted literals, bracketed sections (currency locales, colors), and
// escaped characters never count, so "#,##0.00 [$€-407]" stays numeric
// while "dd.mm.yyyy" is a date.
func formatHasDateTokens(format string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range format {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\':
			escaped = true
		default:
			switch r {
			case 'y', 'm', 'd', 'h', 's', 'Y', 'M', 'D', 'H', 'S':
				return true
			}
		}
	}
	return false
}
