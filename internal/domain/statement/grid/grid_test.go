package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
)

func TestDecode_Delimited(t *testing.T) {
	t.Run("decodes comma-separated text", func(t *testing.T) {
		data := []byte("Date,Amount,Note\n2024-01-02,-3.50,Coffee\n")

		g, err := Decode(data, ".csv")
		require.NoError(t, err)
		require.Len(t, g.Rows, 2)
		assert.Equal(t, ',', g.Delimiter)
		assert.Equal(t, "Date", g.Rows[0][0].Raw)
		assert.Equal(t, Text, g.Rows[1][1].Kind)
		assert.Equal(t, "-3.50", g.Rows[1][1].Raw)
	})

	t.Run("detects semicolon delimiter", func(t *testing.T) {
		data := []byte("Datum;Betrag\n02.01.2024;-3,50\n")

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		assert.Equal(t, ';', g.Delimiter)
		require.Len(t, g.Rows, 2)
		assert.Equal(t, "-3,50", g.Rows[1][1].Raw)
	})

	t.Run("detects tab delimiter", func(t *testing.T) {
		data := []byte("Date\tAmount\n2024-01-02\t-3.50\n")

		g, err := Decode(data, "tsv")
		require.NoError(t, err)
		assert.Equal(t, '\t', g.Delimiter)
		assert.Equal(t, "Amount", g.Rows[0][1].Raw)
	})

	t.Run("detects pipe delimiter", func(t *testing.T) {
		data := []byte("Date|Amount\n2024-01-02|-3.50\n")

		g, err := Decode(data, "txt")
		require.NoError(t, err)
		assert.Equal(t, '|', g.Delimiter)
	})

	t.Run("skips leading blank lines when sampling the delimiter", func(t *testing.T) {
		data := []byte("\n\nDate;Amount\n02.01.2024;-3,50\n")

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		assert.Equal(t, ';', g.Delimiter)
	})

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Amount\n2024-01-02,-3.50\n")...)

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		assert.Equal(t, "Date", g.Rows[0][0].Raw)
	})

	t.Run("transcodes Latin-1 bytes", func(t *testing.T) {
		data := []byte("Date,Note\n2024-01-02,Caf\xe9\n")

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		assert.Equal(t, "Café", g.Rows[1][1].Raw)
	})

	t.Run("drops fully empty rows", func(t *testing.T) {
		data := []byte("a,b\n,,\n   ,\nc,d\n")

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		require.Len(t, g.Rows, 2)
		assert.Equal(t, "c", g.Rows[1][0].Raw)
	})

	t.Run("keeps ragged rows", func(t *testing.T) {
		data := []byte("a,b,c\nd,e\n")

		g, err := Decode(data, "csv")
		require.NoError(t, err)
		assert.Len(t, g.Rows[0], 3)
		assert.Len(t, g.Rows[1], 2)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Decode(nil, "csv")
		assert.ErrorIs(t, err, statement.ErrEmptyInput)

		_, err = Decode([]byte("\n  \n\n"), "csv")
		assert.ErrorIs(t, err, statement.ErrEmptyInput)
	})
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("anything"), ".pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, statement.ErrUnsupportedFormat)
	assert.Equal(t, statement.KindUnsupportedFormat, statement.KindOf(err))
}

func TestDecode_Workbook(t *testing.T) {
	t.Run("exposes typed cells", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetCellValue(sheet, "A1", "Date"))
		require.NoError(t, f.SetCellValue(sheet, "B1", "Amount"))
		require.NoError(t, f.SetCellValue(sheet, "C1", "Note"))
		require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, f.SetCellValue(sheet, "B2", -45.9))
		require.NoError(t, f.SetCellValue(sheet, "C2", "Cash"))

		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		g, err := Decode(buf.Bytes(), "xlsx")
		require.NoError(t, err)
		require.Len(t, g.Rows, 2)

		assert.Equal(t, Text, g.Rows[0][0].Kind)

		date := g.Rows[1][0]
		require.Equal(t, DateTime, date.Kind)
		assert.Equal(t, 2024, date.Time.Year())
		assert.Equal(t, time.March, date.Time.Month())
		assert.Equal(t, 1, date.Time.Day())

		amount := g.Rows[1][1]
		require.Equal(t, Number, amount.Kind)
		assert.Equal(t, "-45.9", amount.Value.String())

		assert.Equal(t, Text, g.Rows[1][2].Kind)
		assert.Equal(t, "Cash", g.Rows[1][2].Raw)
	})

	t.Run("picks the sheet with the most data", func(t *testing.T) {
		f := excelize.NewFile()
		cover := f.GetSheetName(0)
		require.NoError(t, f.SetCellValue(cover, "A1", "Statement export"))

		_, err := f.NewSheet("Transactions")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Transactions", "A1", "Date"))
		require.NoError(t, f.SetCellValue("Transactions", "A2", "2024-01-02"))
		require.NoError(t, f.SetCellValue("Transactions", "A3", "2024-01-03"))

		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		g, err := Decode(buf.Bytes(), "xlsx")
		require.NoError(t, err)
		require.Len(t, g.Rows, 3)
		assert.Equal(t, "Date", g.Rows[0][0].Raw)
	})

	t.Run("currency-styled numbers stay numeric", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)

		euroFmt := "#,##0.00 €"
		euroStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &euroFmt})
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, "A1", 1234.56))
		require.NoError(t, f.SetCellStyle(sheet, "A1", "A1", euroStyle))

		localeFmt := "[$€-407] #,##0.00"
		localeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &localeFmt})
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, "B1", -45.9))
		require.NoError(t, f.SetCellStyle(sheet, "B1", "B1", localeStyle))

		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		g, err := Decode(buf.Bytes(), "xlsx")
		require.NoError(t, err)
		require.Len(t, g.Rows, 1)

		amount := g.Rows[0][0]
		require.Equal(t, Number, amount.Kind)
		assert.Equal(t, "1234.56", amount.Value.String())

		localized := g.Rows[0][1]
		require.Equal(t, Number, localized.Kind)
		assert.Equal(t, "-45.9", localized.Value.String())
	})

	t.Run("custom date formats stay dates", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)

		dateFmt := "dd.mm.yyyy"
		dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, "A1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, f.SetCellStyle(sheet, "A1", "A1", dateStyle))

		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		g, err := Decode(buf.Bytes(), "xlsx")
		require.NoError(t, err)

		cell := g.Rows[0][0]
		require.Equal(t, DateTime, cell.Kind)
		assert.Equal(t, "2024-03-01", cell.Time.Format("2006-01-02"))
	})

	t.Run("corrupt container", func(t *testing.T) {
		_, err := Decode([]byte("this is not a zip archive"), "xlsx")
		require.Error(t, err)
		assert.ErrorIs(t, err, statement.ErrMalformedInput)
	})

	t.Run("empty bytes", func(t *testing.T) {
		_, err := Decode(nil, "xlsx")
		assert.ErrorIs(t, err, statement.ErrEmptyInput)
	})
}

func TestCell_IsEmpty(t *testing.T) {
	assert.True(t, Cell{Kind: Empty}.IsEmpty())
	assert.True(t, Cell{Kind: Text, Raw: "   "}.IsEmpty())
	assert.False(t, Cell{Kind: Text, Raw: "x"}.IsEmpty())
}
