package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/birrflow/birrflow/internal/cli"
	"github.com/birrflow/birrflow/internal/report"
	"github.com/birrflow/birrflow/internal/service"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate transfer statistics",
		Long: `Compute aggregate statistics over a user's recorded transfers:
totals, per-status counts, today's activity, and the top banks
by transferred amount.`,
		RunE: runStats,
	}

	cmd.Flags().StringP("user", "u", "", "User to compute statistics for")
	cmd.Flags().Bool("json", false, "Print the snapshot as JSON")

	_ = viper.BindPFlag("user", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("stats.json", cmd.Flags().Lookup("json"))

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	userID, err := requireUserID()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.GetTransfers(cmd.Context(), service.TransferFilter{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to load transfers: %w", err)
	}

	snapshot := report.Summarize(records, time.Now())

	if viper.GetBool("stats.json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Transfer Statistics for %s", userID)))
	fmt.Println(cli.RenderSnapshot(snapshot))

	return nil
}
