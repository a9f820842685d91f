package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
)

func newSourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage deck sources",
	}
	cmd.AddCommand(newSourceAddCommand(), newSourceListCommand(), newSourceRemoveCommand())
	return cmd
}

func newSourceAddCommand() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "add <path-or-git-url>",
		Short: "Register a local directory or git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path := args[0]
			existing, err := a.db.FindSourceByPath(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("db.FindSourceByPath() > %w", err)
			}
			if existing != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Source already registered with id %d\n", existing.ID)
				return nil
			}

			sourceType := domain.DetectSourceType(path)
			id, err := a.db.InsertSource(cmd.Context(), path, sourceType, owner)
			if err != nil {
				return fmt.Errorf("db.InsertSource() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s source %d: %s\n", sourceType, id, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "user", "", "owner of the decks synced from the source")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSourceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sources, err := a.db.GetAllSources(cmd.Context())
			if err != nil {
				return fmt.Errorf("db.GetAllSources() > %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tOWNER\tLAST SCANNED\tPATH")
			for _, s := range sources {
				scanned := "never"
				if s.LastScanned.Valid {
					scanned = s.LastScanned.Time.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Type, s.OwnerID, scanned, s.Path)
			}
			return tw.Flush()
		},
	}
}

func newSourceRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a source and the decks synced from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.DeleteSource(cmd.Context(), id); err != nil {
				return fmt.Errorf("db.DeleteSource() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed source %d\n", id)
			return nil
		},
	}
}
