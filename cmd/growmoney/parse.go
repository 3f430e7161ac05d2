package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement"
	"github.com/Winglet-Hell/grow-money-sub001/internal/domain/statement/service"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/config"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/money"
	"github.com/Winglet-Hell/grow-money-sub001/pkg/tasks"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a statement export and print normalized transactions",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}

	cmd.Flags().String("currency", "", "reporting currency (default from REPORTING_CURRENCY)")
	cmd.Flags().String("rates", "", "JSON file mapping currency codes to rates into the reporting currency")
	cmd.Flags().Bool("summary", false, "print a summary instead of the transaction list")

	_ = viper.BindPFlag("parse.currency", cmd.Flags().Lookup("currency"))
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reporting := viper.GetString("parse.currency")
	if reporting == "" {
		reporting = cfg.Parse.ReportingCurrency
	}
	if !money.IsValidCode(reporting) {
		return fmt.Errorf("invalid reporting currency %q", reporting)
	}

	rates, err := loadRates(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	svc := service.New(slog.Default(), service.Options{
		ReportingCurrency: reporting,
		Rates:             rates,
		SampleRows:        cfg.Parse.SampleRows,
		HeaderScanRows:    cfg.Parse.HeaderScanRows,
		DisableMetrics:    !cfg.Metrics.Enabled,
	})

	// Parsing is CPU-bound; run it off the calling goroutine so interrupts
	// cancel cleanly mid-file.
	result, err := tasks.Run(cmd.Context(), func(ctx context.Context) (*service.Result, error) {
		return svc.Parse(ctx, data, filepath.Ext(path))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", userMessage(err), err)
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		return printSummary(result, reporting)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Transactions)
}

func loadRates(cmd *cobra.Command) (money.RateTable, error) {
	path, _ := cmd.Flags().GetString("rates")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates %s: %w", path, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rates %s: %w", path, err)
	}
	table := make(money.RateTable, len(raw))
	for code, v := range raw {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}
		table[strings.ToUpper(code)] = rate
	}
	return table, nil
}

func printSummary(result *service.Result, reporting string) error {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range result.Transactions {
		if tx.Type == statement.TypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
	}

	fmt.Printf("transactions: %d (of %d rows, %d rejected)\n",
		len(result.Transactions), result.RowsTotal, result.RowsRejected)
	fmt.Printf("income:   %s\n", money.Display(income, reporting))
	fmt.Printf("expenses: %s\n", money.Display(expenses, reporting))
	if result.SignConflicts > 0 {
		fmt.Printf("sign conflicts: %d (numeric sign kept)\n", result.SignConflicts)
	}
	return nil
}

// userMessage maps the error taxonomy to a human-readable hint.
func userMessage(err error) string {
	switch statement.KindOf(err) {
	case statement.KindUnsupportedFormat:
		return "unsupported file type, expected .csv or .xlsx"
	case statement.KindEmptyInput:
		return "the file contains no data"
	case statement.KindMalformedInput:
		return "the file could not be read, it may be corrupt"
	case statement.KindSchemaInference:
		return "could not find date and amount columns, check the file layout"
	case statement.KindNoValidRows:
		return "no rows could be parsed into transactions"
	default:
		return "parse failed"
	}
}
