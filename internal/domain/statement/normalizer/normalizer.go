// Package normalizer converts raw grid cells into canonical typed field
// values using the frozen inference result. Formatting decisions are never
// re-made per cell; the locale locks from schema inference apply uniformly.
package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/grid"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/schema"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/money"
)

// ErrRowRejected marks a row whose date or amount could not be normalized.
// The assembler drops such rows and continues; it is never a parse failure on
// its own.
var ErrRowRejected = errors.New("row rejected")

// Fields holds the normalized values for one statement row.
type Fields struct {
	Date   time.Time
	Amount decimal.Decimal // signed, reporting currency

	Category string
	Account  string
	Note     string
	Tags     string

	// Original figures are kept when the row was stated in a currency other
	// than the reporting one.
	OriginalAmount   decimal.Decimal
	OriginalCurrency string
	HasOriginal      bool

	// SignConflict is set when a stated type label disagreed with the numeric
	// sign. The numeric sign wins.
	SignConflict bool
}

// Normalizer applies one file's inference result row by row.
type Normalizer struct {
	inf       *schema.Inference
	reporting string
	rates     money.RateTable
}

// New builds a normalizer for one parse run. reporting is the ISO code all
// amounts are expressed in; rates may be nil when no conversion is wanted.
func New(inf *schema.Inference, reporting string, rates money.RateTable) *Normalizer {
	return &Normalizer{inf: inf, reporting: strings.ToUpper(reporting), rates: rates}
}

// NormalizeRow converts one data row. A row whose date or amount cannot be
// normalized at all returns an error wrapping ErrRowRejected.
func (n *Normalizer) NormalizeRow(row []grid.Cell) (*Fields, error) {
	cellAt := func(col int) grid.Cell {
		if col < 0 || col >= len(row) {
			return grid.Cell{Kind: grid.Empty}
		}
		return row[col]
	}

	date, err := n.normalizeDate(cellAt(n.inf.DateCol))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRowRejected, err)
	}

	amount, currencyHint, err := n.normalizeAmount(cellAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRowRejected, err)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: zero amount", ErrRowRejected)
	}

	f := &Fields{Date: date, Amount: amount}

	// Sign resolution must precede conversion so the preserved original
	// amount carries the resolved sign.
	n.applyTypeLabel(f, cellAt)
	n.applyCurrency(f, cellAt, currencyHint)

	for col, role := range n.inf.Roles {
		cell := cellAt(col)
		if cell.IsEmpty() {
			continue
		}
		switch role {
		case schema.RoleCategory:
			f.Category = cleanText(cell.Raw)
		case schema.RoleAccount:
			f.Account = cleanText(cell.Raw)
		case schema.RoleNote:
			f.Note = cleanText(cell.Raw)
		case schema.RoleTags:
			f.Tags = cleanText(cell.Raw)
		case schema.RoleOriginalAmount:
			if v, err := n.parseAmountCell(cell); err == nil && f.OriginalAmount.IsZero() {
				f.OriginalAmount = v
				f.HasOriginal = true
			}
		case schema.RoleOriginalCurrency:
			if code, ok := money.NormalizeCode(cell.Raw); ok && f.OriginalCurrency == "" {
				f.OriginalCurrency = code
				f.HasOriginal = true
			}
		}
	}

	return f, nil
}

func (n *Normalizer) normalizeDate(cell grid.Cell) (time.Time, error) {
	switch cell.Kind {
	case grid.DateTime:
		return cell.Time, nil
	case grid.Text:
		return parseLockedDate(cell.Raw, n.inf.DayFirst)
	default:
		return time.Time{}, fmt.Errorf("no date value")
	}
}

// parseLockedDate parses a textual date under the column-wide order lock.
// ISO dates are unambiguous and accepted regardless of the lock.
func parseLockedDate(s string, dayFirst bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006.01.02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.' || r == ' '
	})
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	a, b, c := atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	if a < 0 || b < 0 || c < 0 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4:
		year, month, day = a, b, c
	case dayFirst:
		day, month, year = a, b, c
	default:
		month, day, year = a, b, c
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q out of range", s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("date %q does not exist", s)
	}
	return t, nil
}

// normalizeAmount resolves the signed amount for a row, merging split
// debit/credit columns when the schema says so.
func (n *Normalizer) normalizeAmount(cellAt func(int) grid.Cell) (decimal.Decimal, string, error) {
	if !n.inf.DoubleEntry {
		cell := cellAt(n.inf.AmountCol)
		if cell.IsEmpty() {
			return decimal.Zero, "", fmt.Errorf("empty amount")
		}
		v, err := n.parseAmountCell(cell)
		if err != nil {
			return decimal.Zero, "", err
		}
		return v, symbolHint(cell), nil
	}

	debitCell := cellAt(n.inf.DebitCol)
	creditCell := cellAt(n.inf.CreditCol)
	if debitCell.IsEmpty() && creditCell.IsEmpty() {
		return decimal.Zero, "", fmt.Errorf("empty debit and credit")
	}

	total := decimal.Zero
	hint := ""
	if !debitCell.IsEmpty() {
		v, err := n.parseAmountCell(debitCell)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("debit: %w", err)
		}
		total = total.Sub(v.Abs())
		hint = symbolHint(debitCell)
	}
	if !creditCell.IsEmpty() {
		v, err := n.parseAmountCell(creditCell)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("credit: %w", err)
		}
		total = total.Add(v.Abs())
		if hint == "" {
			hint = symbolHint(creditCell)
		}
	}
	return total, hint, nil
}

func (n *Normalizer) parseAmountCell(cell grid.Cell) (decimal.Decimal, error) {
	if cell.Kind == grid.Number {
		return cell.Value, nil
	}
	return parseLockedDecimal(cell.Raw, n.inf.DecimalComma)
}

// parseLockedDecimal parses a textual amount under the column-wide separator
// lock. Parenthesized values follow the accounting negative convention.
func parseLockedDecimal(s string, decimalComma bool) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	for _, sym := range money.Symbols() {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' || r == '+' {
			return r
		}
		return -1
	}, s)
	if strings.HasPrefix(s, "-") {
		negative = true
	}
	s = strings.TrimLeft(s, "+-")

	if decimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		v = v.Neg()
	}
	return v, nil
}

// applyCurrency converts a foreign-currency amount into the reporting
// currency, preserving the pre-conversion figure. With no applicable rate the
// native amount stays, with the original fields still populated.
func (n *Normalizer) applyCurrency(f *Fields, cellAt func(int) grid.Cell, symbolCode string) {
	code := ""
	if cell := cellAt(n.inf.CurrencyCol); !cell.IsEmpty() {
		if c, ok := money.NormalizeCode(cell.Raw); ok {
			code = c
		}
	}
	if code == "" {
		code = symbolCode
	}
	if code == "" || code == n.reporting {
		return
	}

	original := f.Amount
	f.OriginalAmount = original
	f.OriginalCurrency = code
	f.HasOriginal = true
	if converted, ok := n.rates.Convert(original, code, n.reporting); ok {
		f.Amount = converted
	}
}

// applyTypeLabel reconciles a stated income/expense label with the numeric
// sign. Unsigned sources state direction only through the label, so an
// expense label on a positive value supplies the missing sign. An explicitly
// negative value contradicting an income label is a real conflict; the
// numeric sign wins and the disagreement is recorded.
func (n *Normalizer) applyTypeLabel(f *Fields, cellAt func(int) grid.Cell) {
	cell := cellAt(n.inf.TypeCol)
	if cell.IsEmpty() {
		return
	}
	expected, ok := signForLabel(cell.Raw)
	if !ok || expected == f.Amount.Sign() {
		return
	}
	if expected < 0 && f.Amount.Sign() > 0 {
		f.Amount = f.Amount.Neg()
		return
	}
	f.SignConflict = true
}

// signForLabel maps a stated type label to its expected amount sign.
func signForLabel(label string) (int, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case containsAny(l, "income", "credit", "deposit", "receita", "ingreso", "einnahme", "доход", "приход"):
		return 1, true
	case containsAny(l, "expense", "debit", "withdrawal", "despesa", "gasto", "ausgabe", "расход", "списание"):
		return -1, true
	}
	return 0, false
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// symbolHint extracts a currency code from a symbol embedded in the cell's
// text. Raw is the rendered text for workbook cells too, so a
// currency-styled number still yields its symbol.
func symbolHint(cell grid.Cell) string {
	code, _ := money.CodeForSymbol(cell.Raw)
	return code
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return -1
	}
	return n
}
