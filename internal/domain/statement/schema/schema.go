// Package schema infers the semantic layout of a decoded statement grid:
// which row is the header, which column plays which role, and the regional
// formatting conventions locked for the whole file.
package schema

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/grid"
)

// Inference is the frozen result of schema inference for one file. It is
// built once and never re-decided per cell at normalization time.
type Inference struct {
	HeaderRow int          // -1 when the file has no header row
	Roles     map[int]Role // column index -> role, RoleIgnore for the rest

	DateCol     int
	AmountCol   int // -1 when the file uses split debit/credit columns
	DebitCol    int
	CreditCol   int
	CurrencyCol int
	TypeCol     int

	DoubleEntry bool

	// Locale locks, decided from aggregate column evidence and applied
	// uniformly to every cell.
	DayFirst     bool
	DecimalComma bool
}

// DataStart returns the index of the first data row.
func (inf *Inference) DataStart() int {
	return inf.HeaderRow + 1
}

const (
	defaultSampleRows     = 20
	defaultHeaderScanRows = 10

	// contentThreshold is the fraction of sampled values that must parse as a
	// date or number for a headerless column to take that role.
	contentThreshold = 0.8

	// fuzzyMaxDistance bounds the edit distance for misspelled header labels.
	fuzzyMaxDistance = 1
)

// Inferencer runs schema inference. The multilingual keyword dictionary is
// compiled once into an Aho-Corasick matcher so every header row scan is a
// single pass regardless of dictionary size.
type Inferencer struct {
	sampleRows     int
	headerScanRows int
	matcher        *ahocorasick.Matcher
}

// New returns an Inferencer with default sampling limits.
func New() *Inferencer {
	return NewWithLimits(defaultSampleRows, defaultHeaderScanRows)
}

// NewWithLimits overrides how many data rows are sampled for content sniffing
// and how many leading rows are scanned for the header.
func NewWithLimits(sampleRows, headerScanRows int) *Inferencer {
	if sampleRows <= 0 {
		sampleRows = defaultSampleRows
	}
	if headerScanRows <= 0 {
		headerScanRows = defaultHeaderScanRows
	}
	patterns := make([]string, len(headerKeywords))
	for i, hk := range headerKeywords {
		patterns[i] = hk.kw
	}
	return &Inferencer{
		sampleRows:     sampleRows,
		headerScanRows: headerScanRows,
		matcher:        ahocorasick.NewStringMatcher(patterns),
	}
}

// Infer builds the column role map for a decoded grid. It fails with a
// schema error when no date column or no amount column can be established.
func (in *Inferencer) Infer(g *grid.Grid) (*Inference, error) {
	if g == nil || len(g.Rows) == 0 {
		return nil, statement.ErrEmptyInput
	}

	inf := &Inference{
		HeaderRow: in.findHeaderRow(g),
		Roles:     make(map[int]Role),
		DateCol:   -1, AmountCol: -1, DebitCol: -1, CreditCol: -1,
		CurrencyCol: -1, TypeCol: -1,
	}

	width := gridWidth(g)
	roles := make([]Role, width)
	flavors := make([]flavor, width)

	if inf.HeaderRow >= 0 {
		header := g.Rows[inf.HeaderRow]
		for col := 0; col < width && col < len(header); col++ {
			label := normalizeLabel(header[col].Raw)
			if label == "" {
				continue
			}
			if hk, ok := in.matchLabel(label); ok {
				roles[col], flavors[col] = hk.role, hk.flavor
			}
		}
	}

	samples := in.collectSamples(g, inf.DataStart(), width)

	// Content sniffing fills the gaps keyword matching left.
	for col := 0; col < width; col++ {
		if roles[col] != "" {
			continue
		}
		switch {
		case columnRatio(samples[col], isDateLike) >= contentThreshold:
			roles[col] = RoleDate
		case columnRatio(samples[col], isNumericLike) >= contentThreshold:
			roles[col] = RoleAmount
		}
	}

	in.assignRoles(inf, g, roles, flavors, samples, width)

	if inf.DateCol < 0 {
		return nil, fmt.Errorf("%w: no date column", statement.ErrNoSchema)
	}
	if inf.AmountCol < 0 && !inf.DoubleEntry {
		return nil, fmt.Errorf("%w: no amount column", statement.ErrNoSchema)
	}

	in.lockLocale(inf, g, samples)
	return inf, nil
}

// shortKeywordRunes bounds the keyword length below which a dictionary hit
// must align to word boundaries. Short keywords like "date" or "type" appear
// inside unrelated words ("updated", "prototype"); longer ones keep
// substring semantics so compound headers ("buchungsdatum") still match.
const shortKeywordRunes = 4

// matchLabel resolves one header label against the dictionary. Exact
// substring hits win by longest keyword; otherwise a small edit distance
// against the dictionary catches misspelled exports.
func (in *Inferencer) matchLabel(label string) (headerKeyword, bool) {
	best := -1
	for _, idx := range in.matcher.Match([]byte(label)) {
		kw := headerKeywords[idx].kw
		if utf8.RuneCountInString(kw) <= shortKeywordRunes && !wholeWordMatch(label, kw) {
			continue
		}
		if best < 0 || len(kw) > len(headerKeywords[best].kw) {
			best = idx
		}
	}
	if best >= 0 {
		return headerKeywords[best], true
	}

	for _, hk := range headerKeywords {
		if len(hk.kw) < 4 {
			continue
		}
		if fuzzy.LevenshteinDistance(label, hk.kw) <= fuzzyMaxDistance {
			return hk, true
		}
	}
	return headerKeyword{}, false
}

// findHeaderRow scans the leading rows for the one with the most dictionary
// hits. Exports often prepend a title or account block before the header.
func (in *Inferencer) findHeaderRow(g *grid.Grid) int {
	bestRow, bestScore := -1, 0
	limit := in.headerScanRows
	if limit > len(g.Rows) {
		limit = len(g.Rows)
	}
	for r := 0; r < limit; r++ {
		score := 0
		for _, cell := range g.Rows[r] {
			if cell.Kind != grid.Text {
				continue
			}
			if _, ok := in.matchLabel(normalizeLabel(cell.Raw)); ok {
				score++
			}
		}
		if score > bestScore {
			bestRow, bestScore = r, score
		}
	}
	if bestRow >= 0 {
		return bestRow
	}

	// No keyword row. A leading all-text row above typed content is still a
	// header, just in a language the dictionary does not cover.
	if len(g.Rows) > 1 && rowAllText(g.Rows[0]) && !rowAllText(g.Rows[1]) {
		return 0
	}
	return -1
}

func rowAllText(row []grid.Cell) bool {
	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		if cell.Kind != grid.Text || isDateLike(cell) || isNumericLike(cell) {
			return false
		}
	}
	return true
}

// collectSamples gathers up to sampleRows data cells per column.
func (in *Inferencer) collectSamples(g *grid.Grid, start, width int) [][]grid.Cell {
	samples := make([][]grid.Cell, width)
	end := start + in.sampleRows
	if end > len(g.Rows) {
		end = len(g.Rows)
	}
	for r := start; r < end; r++ {
		for c := 0; c < width && c < len(g.Rows[r]); c++ {
			if !g.Rows[r][c].IsEmpty() {
				samples[c] = append(samples[c], g.Rows[r][c])
			}
		}
	}
	return samples
}

// assignRoles turns per-column role candidates into the final map, resolving
// amount-column ties deterministically (mixed sign preferred, leftmost wins).
func (in *Inferencer) assignRoles(inf *Inference, g *grid.Grid, roles []Role, flavors []flavor, samples [][]grid.Cell, width int) {
	var amountCandidates []int

	for col := 0; col < width; col++ {
		switch roles[col] {
		case RoleDate:
			if inf.DateCol < 0 {
				inf.DateCol = col
				inf.Roles[col] = RoleDate
			} else {
				inf.Roles[col] = RoleIgnore
			}
		case RoleAmount:
			switch flavors[col] {
			case flavorDebit:
				if inf.DebitCol < 0 {
					inf.DebitCol = col
					inf.Roles[col] = RoleAmount
				} else {
					inf.Roles[col] = RoleIgnore
				}
			case flavorCredit:
				if inf.CreditCol < 0 {
					inf.CreditCol = col
					inf.Roles[col] = RoleAmount
				} else {
					inf.Roles[col] = RoleIgnore
				}
			default:
				amountCandidates = append(amountCandidates, col)
			}
		case RoleCurrency:
			if inf.CurrencyCol < 0 {
				inf.CurrencyCol = col
				inf.Roles[col] = RoleCurrency
			} else {
				inf.Roles[col] = RoleIgnore
			}
		case RoleType:
			if inf.TypeCol < 0 {
				inf.TypeCol = col
				inf.Roles[col] = RoleType
			} else {
				inf.Roles[col] = RoleIgnore
			}
		case RoleCategory, RoleAccount, RoleNote, RoleTags, RoleOriginalAmount, RoleOriginalCurrency:
			if _, taken := firstColWithRole(inf.Roles, roles[col]); !taken {
				inf.Roles[col] = roles[col]
			} else {
				inf.Roles[col] = RoleIgnore
			}
		default:
			inf.Roles[col] = RoleIgnore
		}
	}

	if inf.DebitCol >= 0 && inf.CreditCol >= 0 {
		inf.DoubleEntry = true
		return
	}
	// A lone debit or credit keyword column degrades to a single signed
	// amount column.
	if inf.DebitCol >= 0 || inf.CreditCol >= 0 {
		col := inf.DebitCol
		if col < 0 {
			col = inf.CreditCol
		}
		inf.DebitCol, inf.CreditCol = -1, -1
		inf.AmountCol = col
		return
	}

	switch len(amountCandidates) {
	case 0:
	case 1:
		inf.AmountCol = amountCandidates[0]
	default:
		// Two uniformly-signed columns that are never populated together are
		// an unlabeled debit/credit split: leftmost is treated as debit.
		if len(amountCandidates) == 2 &&
			!hasMixedSign(samples[amountCandidates[0]]) &&
			!hasMixedSign(samples[amountCandidates[1]]) &&
			in.complementary(g, inf.DataStart(), amountCandidates[0], amountCandidates[1]) {
			inf.DebitCol = amountCandidates[0]
			inf.CreditCol = amountCandidates[1]
			inf.Roles[inf.DebitCol] = RoleAmount
			inf.Roles[inf.CreditCol] = RoleAmount
			inf.DoubleEntry = true
			return
		}
		best := amountCandidates[0]
		for _, col := range amountCandidates[1:] {
			if hasMixedSign(samples[col]) && !hasMixedSign(samples[best]) {
				best = col
			}
		}
		inf.AmountCol = best
		for _, col := range amountCandidates {
			if col != best {
				inf.Roles[col] = RoleIgnore
			}
		}
	}
	if inf.AmountCol >= 0 {
		inf.Roles[inf.AmountCol] = RoleAmount
	}
}

func firstColWithRole(roles map[int]Role, role Role) (int, bool) {
	for col, r := range roles {
		if r == role {
			return col, true
		}
	}
	return -1, false
}

// lockLocale decides day-first date order and decimal-comma numbers once from
// whole-column evidence. Deciding per row would silently corrupt dates.
func (in *Inferencer) lockLocale(inf *Inference, g *grid.Grid, samples [][]grid.Cell) {
	var amountSamples []grid.Cell
	if inf.DoubleEntry {
		amountSamples = append(amountSamples, samples[inf.DebitCol]...)
		amountSamples = append(amountSamples, samples[inf.CreditCol]...)
	} else {
		amountSamples = samples[inf.AmountCol]
	}

	if comma, ok := probeDecimalComma(amountSamples); ok {
		inf.DecimalComma = comma
	} else {
		// Semicolon-delimited exports overwhelmingly come from locales that
		// reserve the comma for decimals.
		inf.DecimalComma = g.Delimiter == ';'
	}

	if dayFirst, ok := probeDayFirst(samples[inf.DateCol]); ok {
		inf.DayFirst = dayFirst
	} else if dotSeparatedDates(samples[inf.DateCol]) {
		// Dotted numeric dates follow the European day-first convention;
		// month-first exports use slashes.
		inf.DayFirst = true
	} else {
		inf.DayFirst = inf.DecimalComma
	}
}

// probeDayFirst inspects text date samples: any first component above 12
// proves day-first for the whole column, any second component above 12 proves
// month-first.
func probeDayFirst(samples []grid.Cell) (bool, bool) {
	for _, cell := range samples {
		if cell.Kind != grid.Text {
			continue
		}
		parts := splitDateParts(cell.Raw)
		if len(parts) != 3 || len(parts[0]) == 4 {
			continue
		}
		if atoiSafe(parts[0]) > 12 && atoiSafe(parts[0]) <= 31 {
			return true, true
		}
		if atoiSafe(parts[1]) > 12 && atoiSafe(parts[1]) <= 31 {
			return false, true
		}
	}
	return false, false
}

// probeDecimalComma applies the rightmost-separator rule over the sampled
// amount column: whichever of comma or dot consistently appears last with at
// most two trailing digits is the decimal separator.
func probeDecimalComma(samples []grid.Cell) (bool, bool) {
	commaHints, dotHints := 0, 0
	for _, cell := range samples {
		if cell.Kind != grid.Text {
			continue
		}
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' {
				return r
			}
			return -1
		}, cell.Raw)
		cleaned = strings.TrimPrefix(cleaned, "-")
		if cleaned == "" {
			continue
		}

		hasComma := strings.Contains(cleaned, ",")
		hasDot := strings.Contains(cleaned, ".")
		switch {
		case hasComma && hasDot:
			if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
				commaHints++
			} else {
				dotHints++
			}
		case hasComma:
			if hasDecimalSuffix(cleaned, ',') {
				commaHints++
			}
		case hasDot:
			if hasDecimalSuffix(cleaned, '.') {
				dotHints++
			}
		}
	}
	if commaHints == dotHints {
		return false, false
	}
	return commaHints > dotHints, true
}

func hasDecimalSuffix(value string, sep rune) bool {
	idx := strings.LastIndex(value, string(sep))
	if idx == -1 || idx == len(value)-1 {
		return false
	}
	digits := 0
	for _, r := range value[idx+1:] {
		if !unicode.IsDigit(r) {
			return false
		}
		digits++
		if digits > 2 {
			return false
		}
	}
	return digits > 0
}

func columnRatio(samples []grid.Cell, pred func(grid.Cell) bool) float64 {
	if len(samples) == 0 {
		return 0
	}
	hits := 0
	for _, cell := range samples {
		if pred(cell) {
			hits++
		}
	}
	return float64(hits) / float64(len(samples))
}

func isDateLike(cell grid.Cell) bool {
	switch cell.Kind {
	case grid.DateTime:
		return true
	case grid.Text:
		parts := splitDateParts(cell.Raw)
		if len(parts) != 3 {
			return false
		}
		for _, p := range parts {
			if p == "" || len(p) > 4 || atoiSafe(p) < 0 {
				return false
			}
		}
		return len(parts[0]) == 4 || len(parts[2]) == 4 || len(parts[2]) == 2
	default:
		return false
	}
}

func isNumericLike(cell grid.Cell) bool {
	switch cell.Kind {
	case grid.Number:
		return true
	case grid.Text:
		s := strings.TrimSpace(cell.Raw)
		s = strings.Trim(s, "()")
		digits := 0
		for _, r := range s {
			switch {
			case unicode.IsDigit(r):
				digits++
			case r == ',' || r == '.' || r == '-' || r == '+' || r == ' ':
			case unicode.IsLetter(r):
				return false
			}
		}
		return digits > 0
	default:
		return false
	}
}

func hasMixedSign(samples []grid.Cell) bool {
	pos, neg := false, false
	for _, cell := range samples {
		switch cell.Kind {
		case grid.Number:
			if cell.Value.Sign() < 0 {
				neg = true
			} else if cell.Value.Sign() > 0 {
				pos = true
			}
		case grid.Text:
			s := strings.TrimSpace(cell.Raw)
			if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(") {
				neg = true
			} else {
				pos = true
			}
		}
	}
	return pos && neg
}

// complementary reports whether two columns are populated on disjoint rows,
// the signature of a debit/credit split.
func (in *Inferencer) complementary(g *grid.Grid, start, colA, colB int) bool {
	end := start + in.sampleRows
	if end > len(g.Rows) {
		end = len(g.Rows)
	}
	either := 0
	for r := start; r < end; r++ {
		row := g.Rows[r]
		a := colA < len(row) && !row[colA].IsEmpty()
		b := colB < len(row) && !row[colB].IsEmpty()
		if a && b {
			return false
		}
		if a || b {
			either++
		}
	}
	return either > 0
}

func gridWidth(g *grid.Grid) int {
	width := 0
	for _, row := range g.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// wholeWordMatch reports whether kw occurs in label bounded by non-letter,
// non-digit runes on both sides.
func wholeWordMatch(label, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(label[start:], kw)
		if idx < 0 {
			return false
		}
		at := start + idx
		if wordBoundaryBefore(label, at) && wordBoundaryAfter(label, at+len(kw)) {
			return true
		}
		start = at + 1
	}
}

func wordBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func wordBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func dotSeparatedDates(samples []grid.Cell) bool {
	for _, cell := range samples {
		if cell.Kind != grid.Text {
			continue
		}
		s := strings.TrimSpace(cell.Raw)
		if strings.Count(s, ".") == 2 && len(splitDateParts(s)) == 3 && len(s) >= 6 {
			return true
		}
	}
	return false
}

func splitDateParts(s string) []string {
	return strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '/' || r == '-' || r == '.' || r == ' '
	})
}

// atoiSafe parses leading digits, returning -1 for non-numeric input.
func atoiSafe(s string) int {
	n := 0
	seen := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return -1
	}
	return n
}
