package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"adpilot/internal/core/config"
	"adpilot/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-feature LLM usage from the usage store",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Println("No database configured; usage is in-memory only")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	summary, err := postgres.NewUsageRepo(db).Summary(ctx, "")
	if err != nil {
		slog.Error("Failed to query usage", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FEATURE\tCALLS\tCACHE HITS\tTOKENS\tCOST")

	for _, u := range summary {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t$%.4f\n", u.Feature, u.Calls, u.CacheHits, u.Tokens, u.Cost)
	}
	_ = w.Flush()
}
