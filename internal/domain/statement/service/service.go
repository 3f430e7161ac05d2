// Package service orchestrates the ingestion pipeline: decode the file into
// a grid, infer its schema once, normalize every row under the frozen
// inference, and assemble the canonical transaction sequence.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/grid"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/normalizer"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/schema"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/metrics"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/money"
)

// Options configures one parse service instance.
type Options struct {
	// ReportingCurrency is the ISO code all amounts are expressed in.
	// Defaults to USD.
	ReportingCurrency string
	// Rates converts foreign-currency rows into the reporting currency. May
	// be nil; unconvertible rows keep their native amount.
	Rates money.RateTable
	// SampleRows / HeaderScanRows tune schema inference; zero means default.
	SampleRows     int
	HeaderScanRows int
	// DisableMetrics stops the service from touching the Prometheus
	// collectors. Off by default so embedded callers get metrics for free.
	DisableMetrics bool
}

// Result is the outcome of one successful parse. Transactions preserve
// original file row order; sorting is a caller concern.
type Result struct {
	Transactions  []statement.Transaction
	RowsTotal     int
	RowsRejected  int
	SignConflicts int
}

// Service runs statement parses. It holds no per-file state: every call gets
// a fresh grid and inference, so concurrent or abandoned parses never share
// anything mutable.
type Service struct {
	logger    *slog.Logger
	reporting string
	rates     money.RateTable
	inferrer  *schema.Inferencer
	metrics   bool
}

// New creates a parse service.
func New(logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	reporting := opts.ReportingCurrency
	if reporting == "" {
		reporting = "USD"
	}
	return &Service{
		logger:    logger,
		reporting: reporting,
		rates:     opts.Rates,
		inferrer:  schema.NewWithLimits(opts.SampleRows, opts.HeaderScanRows),
		metrics:   !opts.DisableMetrics,
	}
}

// ctxCheckEvery bounds how often the row loop polls for cancellation.
const ctxCheckEvery = 256

// Parse runs the full pipeline over one file's bytes. It either returns the
// complete normalized sequence or a terminal error; no partial results are
// visible to the caller.
func (s *Service) Parse(ctx context.Context, data []byte, ext string) (*Result, error) {
	start := time.Now()
	result, err := s.parse(ctx, data, ext)
	if s.metrics {
		metrics.ParseDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StatementsParsed.WithLabelValues(string(statement.KindOf(err))).Inc()
		} else {
			metrics.StatementsParsed.WithLabelValues("ok").Inc()
		}
	}
	return result, err
}

func (s *Service) parse(ctx context.Context, data []byte, ext string) (*Result, error) {
	g, err := grid.Decode(data, ext)
	if err != nil {
		return nil, err
	}

	inf, err := s.inferrer.Infer(g)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("schema inferred",
		"headerRow", inf.HeaderRow,
		"dateCol", inf.DateCol,
		"doubleEntry", inf.DoubleEntry,
		"dayFirst", inf.DayFirst,
		"decimalComma", inf.DecimalComma)

	norm := normalizer.New(inf, s.reporting, s.rates)

	result := &Result{Transactions: make([]statement.Transaction, 0, len(g.Rows))}
	perDay := make(map[string]int)

	for i := inf.DataStart(); i < len(g.Rows); i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		result.RowsTotal++

		fields, err := norm.NormalizeRow(g.Rows[i])
		if err != nil {
			if errors.Is(err, normalizer.ErrRowRejected) {
				result.RowsRejected++
				if s.metrics {
					metrics.RowsRejected.Inc()
				}
				s.logger.Debug("row rejected", "row", i+1, "reason", err)
				continue
			}
			return nil, err
		}
		if fields.SignConflict {
			result.SignConflicts++
			if s.metrics {
				metrics.SignConflicts.Inc()
			}
		}

		result.Transactions = append(result.Transactions, s.assemble(fields, perDay))
	}

	if result.RowsTotal == 0 {
		return nil, statement.ErrEmptyInput
	}
	if len(result.Transactions) == 0 {
		return nil, fmt.Errorf("%w: %d rows rejected", statement.ErrNoValidRows, result.RowsRejected)
	}

	if result.RowsRejected > 0 || result.SignConflicts > 0 {
		s.logger.Info("parse finished with warnings",
			"rows", result.RowsTotal,
			"rejected", result.RowsRejected,
			"signConflicts", result.SignConflicts)
	}
	return result, nil
}

// assemble turns normalized fields into the canonical record. The identifier
// is synthetic and never reused; the index counts prior same-day rows in
// original file order, giving a stable secondary sort key downstream.
func (s *Service) assemble(f *normalizer.Fields, perDay map[string]int) statement.Transaction {
	date := statement.DateOf(f.Date)
	day := date.String()

	tx := statement.Transaction{
		ID:       uuid.NewString(),
		Date:     date,
		Index:    perDay[day],
		Amount:   f.Amount,
		Type:     statement.TypeOf(f.Amount),
		Category: f.Category,
		Account:  f.Account,
		Note:     f.Note,
		Tags:     f.Tags,
	}
	perDay[day]++

	if tx.Category == "" {
		tx.Category = statement.DefaultCategory
	}
	if f.HasOriginal {
		original := f.OriginalAmount
		tx.OriginalAmount = &original
		tx.OriginalCurrency = f.OriginalCurrency
	}
	return tx
}
