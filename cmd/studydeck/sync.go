package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	decksync "github.com/conorfennell/studydeck/internal/sync"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync every configured source once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.syncer.RunAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("syncer.RunAll() > %w", err)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import the decks of a markdown or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			decks, err := a.syncer.Import(cmd.Context(), args[0], owner)
			if err != nil {
				return fmt.Errorf("syncer.Import() > %w", err)
			}
			for _, d := range decks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d review cards, %d flashcards\n",
					d.ID, d.Name, len(d.ReviewCards), d.FlashcardCount())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "user", "", "owner of the imported decks")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printResults(w io.Writer, results []decksync.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No sources configured.")
		return
	}
	for _, r := range results {
		line := fmt.Sprintf("source %d: %d decks, %d review cards, %d flashcards, %d removed",
			r.SourceID, r.Decks, r.ReviewCards, r.Flashcards, r.Removed)
		if len(r.Errors) == 0 {
			fmt.Fprintln(w, color.GreenString(line))
			continue
		}
		fmt.Fprintln(w, color.YellowString("%s, %d errors", line, len(r.Errors)))
		for _, err := range r.Errors {
			fmt.Fprintln(w, color.RedString("  - %v", err))
		}
	}
}
