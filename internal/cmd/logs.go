package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/audit"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/config"
)

var (
	logsLimit int
	logsPrune bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recent audit log entries",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntVar(&logsLimit, "limit", 20, "Maximum records to show")
	logsCmd.Flags().BoolVar(&logsPrune, "prune", false, "Delete records older than the configured retention before listing")
	rootCmd.AddCommand(logsCmd)
}

func openAuditStore() (*audit.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := audit.NewStore(cfg.AuditDBPath())
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, cfg, err := openAuditStore()
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer store.Close()

	if logsPrune {
		retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		n, err := store.PruneOlderThan(ctx, retention)
		if err != nil {
			return fmt.Errorf("pruning audit records: %w", err)
		}
		fmt.Printf("Pruned %d record(s) older than %d days.\n\n", n, cfg.RetentionDays)
	}

	records, err := store.List(ctx, logsLimit)
	if err != nil {
		return fmt.Errorf("querying audit records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}
	renderLogs(os.Stdout, records)
	return nil
}

// renderLogs writes audit record lines to w (testable).
func renderLogs(w io.Writer, records []audit.Record) {
	fmt.Fprintf(w, "Audit Records (showing %d):\n\n", len(records))
	for i := range records {
		rec := &records[i]
		fmt.Fprintf(w, "%s  %-7s  %-6s  score=%.2f  findings=%d\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.EventType,
			rec.RiskTier,
			rec.RiskScore,
			len(rec.Findings),
		)
	}
}
