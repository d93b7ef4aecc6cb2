package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/birrflow/birrflow/internal/cli"
	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/lifecycle"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/service"
)

func transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "List and manage recorded transfers",
	}

	cmd.PersistentFlags().StringP("user", "u", "", "User the transfers belong to")
	_ = viper.BindPFlag("user", cmd.PersistentFlags().Lookup("user"))

	cmd.AddCommand(transfersListCmd())
	cmd.AddCommand(transitionCmd("verify", model.StatusVerified, "Mark a pending transfer as verified"))
	cmd.AddCommand(transitionCmd("fraud", model.StatusFraud, "Mark a pending transfer as fraudulent"))
	cmd.AddCommand(transitionCmd("cancel", model.StatusCancelled, "Cancel a pending transfer"))

	return cmd
}

func transfersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers",
		RunE:  runTransfersList,
	}

	cmd.Flags().String("status", "", "Filter by status (pending_verification, verified, fraud, cancelled)")
	cmd.Flags().String("bank", "", "Filter by bank name (substring match)")
	cmd.Flags().StringP("start-date", "s", "", "Only transfers on or after this date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "Only transfers on or before this date (format: 2006-01-02)")
	cmd.Flags().IntP("limit", "n", 50, "Maximum number of transfers to show")
	cmd.Flags().Int("offset", 0, "Number of transfers to skip")

	return cmd
}

func runTransfersList(cmd *cobra.Command, _ []string) error {
	userID, err := requireUserID()
	if err != nil {
		return err
	}

	filter, err := buildFilter(cmd, userID)
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.GetTransfers(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list transfers: %w", err)
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Transfers for %s", userID)))
	fmt.Println(cli.RenderTransferTable(records))

	return nil
}

func buildFilter(cmd *cobra.Command, userID string) (service.TransferFilter, error) {
	filter := service.TransferFilter{UserID: userID}

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		ts := model.TransferStatus(status)
		if !ts.Valid() {
			return filter, fmt.Errorf("unknown status %q", status)
		}
		filter.Status = ts
	}
	filter.BankName, _ = cmd.Flags().GetString("bank")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	filter.Offset, _ = cmd.Flags().GetInt("offset")

	if raw, _ := cmd.Flags().GetString("start-date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid start date format: %w", err)
		}
		filter.StartDate = &t
	}
	if raw, _ := cmd.Flags().GetString("end-date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end date format: %w", err)
		}
		filter.EndDate = &t
	}

	return filter, nil
}

// transitionCmd builds one of the verify/fraud/cancel subcommands; they
// differ only in the target status.
func transitionCmd(use string, target model.TransferStatus, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <reference>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUserID()
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			record, err := lifecycle.NewManager(store).Transition(cmd.Context(), userID, args[0], target)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrNotFound):
					return fmt.Errorf("no transfer with reference %s", args[0])
				case errors.Is(err, common.ErrInvalidTransition):
					return fmt.Errorf("cannot %s transfer %s: %w", use, args[0], err)
				default:
					return fmt.Errorf("failed to update transfer: %w", err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Transfer %s is now %s", record.Reference, record.Status)))
			return nil
		},
	}
}
