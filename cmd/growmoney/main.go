// Command growmoney parses bank and card statement exports into normalized
// transaction records. It is a thin caller around the ingestion pipeline:
// all persistence, sorting, and presentation stay outside the core.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Winglet-Hell/grow-money-sub001/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "growmoney",
	Short: "Normalize bank statement exports into clean transaction records",
	Long: `growmoney ingests CSV/XLSX statement exports with unknown column layouts,
locales and currency formatting, and emits a clean, ordered sequence of
transactions with a uniform sign convention (positive = income).`,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(parseCmd())
}

func initConfig(cmd *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("GROWMONEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Environment configuration (LOG_LEVEL / LOG_FORMAT, .env) supplies the
	// defaults; explicit flags override.
	levelName := viper.GetString("logging.level")
	formatName := viper.GetString("logging.format")
	if cfg, err := config.Load(); err == nil {
		if !cmd.Flags().Changed("log-level") {
			levelName = cfg.Logging.Level
		}
		if !cmd.Flags().Changed("log-format") {
			formatName = cfg.Logging.Format
		}
	}

	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if formatName == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
