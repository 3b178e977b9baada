package main

import (
	"encoding/json"
	"os"

	"github.com/kamilpajak/humanorai/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past predictions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every past prediction",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum number of entries (overrides config)")
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withBrowser(func(b *history.Browser, limit int) error {
		busy := newBusyIndicator(os.Stderr, "Yükleniyor...")
		busy.Start()
		_, err := b.Load(cmd.Context(), limit)
		busy.Stop()
		return showHistory(b, err)
	})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	return withBrowser(func(b *history.Browser, _ int) error {
		busy := newBusyIndicator(os.Stderr, "Temizleniyor...")
		busy.Start()
		_, err := b.Clear(cmd.Context())
		busy.Stop()
		return showHistory(b, err)
	})
}

func withBrowser(fn func(b *history.Browser, limit int) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit := cfg.HistoryLimit
	if historyLimit != 0 {
		limit = historyLimit
	}
	if limit <= 0 {
		return history.ErrInvalidLimit
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	b := history.NewBrowser(newClient(cfg), history.WithLogger(logger), history.WithLimit(limit))
	defer b.Close()
	return fn(b, limit)
}

func showHistory(b *history.Browser, err error) error {
	view := b.View()
	if jsonOutput && err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Items)
	}
	printHistory(os.Stdout, os.Stderr, view)
	if err != nil && view.Err != "" {
		return errShown
	}
	return err
}
