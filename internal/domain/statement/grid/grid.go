// Package grid turns raw statement bytes into a generic typed cell grid.
// It handles delimiter auto-detection for delimited text and typed cell
// extraction for spreadsheet workbooks.
package grid

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
)

// CellKind discriminates the native type of a decoded cell. Delimited text
// yields only Text cells; workbook decoding preserves numeric and date typing
// so the normalizer can skip locale disambiguation for natively typed values.
type CellKind int

const (
	Empty CellKind = iota
	Text
	Number
	DateTime
)

// Cell is one grid cell. Raw always holds the source text; Value and Time are
// set for Number and DateTime cells respectively.
type Cell struct {
	Kind  CellKind
	Raw   string
	Value decimal.Decimal
	Time  time.Time
}

func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || strings.TrimSpace(c.Raw) == ""
}

// Grid is the 2-D cell matrix for one decoded file. Fully empty rows are
// already trimmed. Owned by the decode stage; discarded after normalization.
type Grid struct {
	Rows [][]Cell

	// Delimiter is the detected field separator for delimited input (zero for
	// workbooks). Schema inference uses it as a weak regional hint.
	Delimiter rune
}

// Decode interprets raw file bytes according to the declared file-name
// extension. The extension selects the decoder strategy; content is not
// sniffed independently of it.
func Decode(data []byte, ext string) (*Grid, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "csv", "tsv", "txt":
		return decodeDelimited(data)
	case "xlsx", "xls":
		return decodeWorkbook(data)
	default:
		return nil, fmt.Errorf("%w: %q", statement.ErrUnsupportedFormat, ext)
	}
}

func decodeDelimited(data []byte) (*Grid, error) {
	data = normalizeTextBytes(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, statement.ErrEmptyInput
	}

	delimiter := detectDelimiter(firstNonEmptyLine(data))
	if delimiter == 0 {
		delimiter = ','
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]Cell
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", statement.ErrMalformedInput, err)
		}

		row := make([]Cell, len(record))
		empty := true
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				row[i] = Cell{Kind: Empty}
				continue
			}
			row[i] = Cell{Kind: Text, Raw: field}
			empty = false
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, statement.ErrEmptyInput
	}
	return &Grid{Rows: rows, Delimiter: delimiter}, nil
}

// firstNonEmptyLine returns the first line with visible content, used as the
// sample for delimiter detection.
func firstNonEmptyLine(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func detectDelimiter(line string) rune {
	best := rune(0)
	bestCount := 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best
}

// normalizeTextBytes strips a UTF-8 BOM and transcodes Latin-1 exports so the
// CSV reader always sees valid UTF-8.
func normalizeTextBytes(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
