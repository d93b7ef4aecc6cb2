package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/birrflow/birrflow/internal/cli"
	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/lifecycle"
	"github.com/birrflow/birrflow/internal/parser"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import notification messages from files",
		Long: `Import a batch of notification messages and admit the extracted
transfers into the database.

Each file contains one message per block, with blocks separated by
blank lines. Messages that cannot be parsed or that duplicate an
existing reference are reported but do not stop the import.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("user", "u", "", "User the transfers belong to")
	cmd.Flags().Bool("dry-run", false, "Parse the messages without saving anything")

	_ = viper.BindPFlag("user", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	var messages []string
	for _, path := range args {
		fromFile, readErr := readMessageFile(path)
		if readErr != nil {
			return readErr
		}
		messages = append(messages, fromFile...)
	}
	if len(messages) == 0 {
		slog.Info(cli.FormatWarning("No messages found in file"))
		return nil
	}

	dryRun := viper.GetBool("import.dry_run")
	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
	}

	var manager *lifecycle.Manager
	if !dryRun {
		store, storeErr := initStorage(ctx)
		if storeErr != nil {
			return fmt.Errorf("failed to open database: %w", storeErr)
		}
		defer func() { _ = store.Close() }()
		manager = lifecycle.NewManager(store)
	}

	engine := parser.NewEngine()
	bar := newImportBar(len(messages))

	var imported, duplicates, failed int
	for _, message := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		candidate, parseErr := engine.Parse(message)
		if parseErr != nil {
			failed++
			slog.Debug("Skipping unparseable message", "error", parseErr)
			_ = bar.Add(1)
			continue
		}

		if !dryRun {
			if _, admitErr := manager.Admit(ctx, *candidate, userID); admitErr != nil {
				if errors.Is(admitErr, common.ErrDuplicateReference) {
					duplicates++
				} else {
					failed++
					slog.Warn("Failed to save transfer", "reference", candidate.Reference, "error", admitErr)
				}
				_ = bar.Add(1)
				continue
			}
		}

		imported++
		_ = bar.Add(1)
	}

	verb := "Imported"
	if dryRun {
		verb = "Parsed"
	}
	summary := fmt.Sprintf("%s: %d\nDuplicates: %d\nUnrecognized: %d\n", verb, imported, duplicates, failed)
	fmt.Println(cli.RenderBox("Import Summary", summary))

	return nil
}

// readMessageFile splits a file into messages on blank lines.
func readMessageFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	var messages []string
	for _, block := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			messages = append(messages, block)
		}
	}
	return messages, nil
}

func newImportBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing messages...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
