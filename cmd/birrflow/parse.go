package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/birrflow/birrflow/internal/cli"
	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/lifecycle"
	"github.com/birrflow/birrflow/internal/parser"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Extract a transfer from a notification message",
		Long: `Parse a single bank or mobile-money notification message and print
the extracted transfer fields without saving anything.

The message is taken from the argument, or from stdin when no
argument is given. Use --save to admit the transfer as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().Bool("json", false, "Print the extracted candidate as JSON")
	cmd.Flags().Bool("save", false, "Admit the extracted transfer into the database")
	cmd.Flags().StringP("user", "u", "", "User the transfer belongs to (required with --save)")

	_ = viper.BindPFlag("parse.json", cmd.Flags().Lookup("json"))
	_ = viper.BindPFlag("user", cmd.Flags().Lookup("user"))

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readMessage(args)
	if err != nil {
		return err
	}

	engine := parser.NewEngine()
	candidate, err := engine.Parse(text)
	if err != nil {
		return fmt.Errorf("could not extract a transfer: %w", err)
	}

	if viper.GetBool("parse.json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encodeErr := enc.Encode(candidate); encodeErr != nil {
			return fmt.Errorf("failed to encode candidate: %w", encodeErr)
		}
	} else {
		fmt.Println(cli.RenderBox("Extracted Transfer", cli.RenderCandidate(candidate)))
	}

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	record, err := lifecycle.NewManager(store).Admit(cmd.Context(), *candidate, userID)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateReference) {
			return fmt.Errorf("transfer already recorded: %w", err)
		}
		return fmt.Errorf("failed to save transfer: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved transfer %s for %s", record.Reference, userID)))
	return nil
}

func readMessage(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read message from stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("empty message")
	}
	return text, nil
}
