package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/grid"
)

func mustGrid(t *testing.T, csv string) *grid.Grid {
	t.Helper()
	g, err := grid.Decode([]byte(csv), "csv")
	require.NoError(t, err)
	return g
}

func TestInferencer_Infer(t *testing.T) {
	in := New()

	t.Run("maps English header roles", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount,Currency,Category,Account,Note,Tags,Type
13.01.2024,-45.90,EUR,Groceries,Cash,Weekly shop,food,Expense`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 0, inf.HeaderRow)
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
		assert.Equal(t, 2, inf.CurrencyCol)
		assert.Equal(t, 7, inf.TypeCol)
		assert.Equal(t, RoleCategory, inf.Roles[3])
		assert.Equal(t, RoleAccount, inf.Roles[4])
		assert.Equal(t, RoleNote, inf.Roles[5])
		assert.Equal(t, RoleTags, inf.Roles[6])
		assert.False(t, inf.DoubleEntry)
	})

	t.Run("maps Russian header roles", func(t *testing.T) {
		g := mustGrid(t, `Дата;Сумма;Категория;Описание
13.01.2024;1 234,56;Продукты;Магазин`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
		assert.Equal(t, RoleCategory, inf.Roles[2])
		assert.Equal(t, RoleNote, inf.Roles[3])
	})

	t.Run("finds header below a preamble", func(t *testing.T) {
		g := mustGrid(t, `Statement Export
Period: January 2024
Date,Amount,Category
13.01.2024,-45.90,Groceries
14.01.2024,2000.00,Salary`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 2, inf.HeaderRow)
		assert.Equal(t, 3, inf.DataStart())
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
	})

	t.Run("tolerates misspelled header labels", func(t *testing.T) {
		g := mustGrid(t, `Datte,Amout,Catagory
13.01.2024,-45.90,Groceries`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
		assert.Equal(t, RoleCategory, inf.Roles[2])
	})

	t.Run("short keywords inside longer words claim no role", func(t *testing.T) {
		g := mustGrid(t, `Last Updated,Date,Amount
n/a,13.01.2024,-45.90
n/a,05.02.2024,100.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 1, inf.DateCol)
		assert.Equal(t, 2, inf.AmountCol)
		assert.Equal(t, RoleIgnore, inf.Roles[0])
	})

	t.Run("compound headers still match longer keywords", func(t *testing.T) {
		g := mustGrid(t, `Buchungsdatum,Betrag
13.01.2024,-45.90`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
	})

	t.Run("treats unknown all-text leading row as header", func(t *testing.T) {
		g := mustGrid(t, `Когда,Сколько
13.01.2024,-45.90
14.01.2024,2000.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 0, inf.HeaderRow)
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
	})

	t.Run("sniffs roles without any header", func(t *testing.T) {
		g := mustGrid(t, `13.01.2024,-45.90
14.01.2024,2000.00
15.01.2024,-12.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, -1, inf.HeaderRow)
		assert.Equal(t, 0, inf.DataStart())
		assert.Equal(t, 0, inf.DateCol)
		assert.Equal(t, 1, inf.AmountCol)
	})

	t.Run("ignores balance columns", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount,Balance
13.01.2024,-45.90,954.10
14.01.2024,2000.00,2954.10`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 1, inf.AmountCol)
		assert.Equal(t, RoleIgnore, inf.Roles[2])
	})

	t.Run("maps original amount and currency", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount,Original Amount,Original Currency
13.01.2024,-50.00,-45.90,EUR`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.Equal(t, 1, inf.AmountCol)
		assert.Equal(t, RoleOriginalAmount, inf.Roles[2])
		assert.Equal(t, RoleOriginalCurrency, inf.Roles[3])
	})
}

func TestInferencer_DebitCredit(t *testing.T) {
	in := New()

	t.Run("labeled debit and credit columns", func(t *testing.T) {
		g := mustGrid(t, `Date,Debit,Credit
13.01.2024,45.90,
14.01.2024,,2000.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DoubleEntry)
		assert.Equal(t, 1, inf.DebitCol)
		assert.Equal(t, 2, inf.CreditCol)
		assert.Equal(t, -1, inf.AmountCol)
	})

	t.Run("lone debit column degrades to a signed amount", func(t *testing.T) {
		g := mustGrid(t, `Date,Debit
13.01.2024,45.90`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.False(t, inf.DoubleEntry)
		assert.Equal(t, 1, inf.AmountCol)
	})

	t.Run("detects an unlabeled complementary pair", func(t *testing.T) {
		g := mustGrid(t, `13.01.2024,45.90,
14.01.2024,,2000.00
15.01.2024,12.00,`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DoubleEntry)
		assert.Equal(t, 1, inf.DebitCol)
		assert.Equal(t, 2, inf.CreditCol)
	})

	t.Run("prefers the mixed-sign column when both are always populated", func(t *testing.T) {
		g := mustGrid(t, `13.01.2024,100.00,-50.25
14.01.2024,200.00,75.10`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.False(t, inf.DoubleEntry)
		assert.Equal(t, 2, inf.AmountCol)
		assert.Equal(t, RoleIgnore, inf.Roles[1])
	})
}

func TestInferencer_LocaleLocks(t *testing.T) {
	in := New()

	t.Run("day component above 12 proves day-first", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount
13.01.2024,-45.90
05.02.2024,100.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DayFirst)
	})

	t.Run("second component above 12 proves month-first", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount
01/13/2024,-45.90
02/05/2024,100.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.False(t, inf.DayFirst)
	})

	t.Run("ambiguous dotted dates default to day-first", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount
01.03.2024,-45.90
02.03.2024,2000.00`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DayFirst)
	})

	t.Run("rightmost comma locks decimal-comma", func(t *testing.T) {
		g := mustGrid(t, `Date;Amount
13.01.2024;1.234,56
14.01.2024;987,65`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DecimalComma)
	})

	t.Run("dot decimals lock dot", func(t *testing.T) {
		g := mustGrid(t, `Date,Amount
13.01.2024,"1,234.56"
14.01.2024,987.65`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.False(t, inf.DecimalComma)
	})

	t.Run("semicolon delimiter breaks separator ties", func(t *testing.T) {
		g := mustGrid(t, `Date;Amount
13.01.2024;-45
14.01.2024;2000`)

		inf, err := in.Infer(g)
		require.NoError(t, err)
		assert.True(t, inf.DecimalComma)
	})
}

func TestInferencer_NoSchema(t *testing.T) {
	in := New()

	t.Run("no date column", func(t *testing.T) {
		g := mustGrid(t, `Name,City
Alice,London
Bob,Paris`)

		_, err := in.Infer(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, statement.ErrNoSchema)
		assert.Equal(t, statement.KindSchemaInference, statement.KindOf(err))
	})

	t.Run("no amount column", func(t *testing.T) {
		g := mustGrid(t, `Date,Note
13.01.2024,hello`)

		_, err := in.Infer(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, statement.ErrNoSchema)
	})

	t.Run("empty grid", func(t *testing.T) {
		_, err := in.Infer(&grid.Grid{})
		assert.ErrorIs(t, err, statement.ErrEmptyInput)
	})
}
