package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
)

func newProgressCommand() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "progress <deck-id>",
		Short: "Show a learner's progress on a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			deck, err := a.db.GetDeck(ctx, args[0])
			if err != nil {
				return fmt.Errorf("db.GetDeck() > %w", err)
			}
			summary, err := a.tracker.GetProgressSummary(ctx, userID, deck.ID)
			if err != nil {
				return fmt.Errorf("tracker.GetProgressSummary() > %w", err)
			}
			canReview, err := a.tracker.CanEnterReviewMode(ctx, userID, deck.ID)
			if err != nil {
				return fmt.Errorf("tracker.CanEnterReviewMode() > %w", err)
			}
			printSummary(cmd.OutOrStdout(), deck.Name, summary, canReview)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "learner to report on")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printSummary(w io.Writer, name string, s domain.ProgressSummary, canReview bool) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(name))
	fmt.Fprintf(w, "  review cards  seen %s  reviewed %s\n",
		ratio(s.SeenReviewCards, s.TotalReviewCards), ratio(s.ReviewedReviewCards, s.TotalReviewCards))
	fmt.Fprintf(w, "  flashcards    seen %s  reviewed %s\n",
		ratio(s.SeenFlashcards, s.TotalFlashcards), ratio(s.ReviewedFlashcards, s.TotalFlashcards))
	if canReview {
		fmt.Fprintln(w, color.GreenString("  ready for review"))
	} else {
		fmt.Fprintln(w, color.YellowString("  study some cards before reviewing"))
	}
}

func ratio(n, total int) string {
	text := fmt.Sprintf("%d/%d", n, total)
	switch {
	case total > 0 && n == total:
		return color.GreenString(text)
	case n == 0:
		return color.RedString(text)
	}
	return color.YellowString(text)
}
