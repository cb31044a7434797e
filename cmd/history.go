package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/dopesheet/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the command journal",
	Long:  "Show the command journal, newest first (time, operation, scene, summary)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		wipe, _ := cmd.Flags().GetBool("clear")
		out := cmd.OutOrStdout()

		dbConn, err := openJournal()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := journal.NewRepository(dbConn)
		if wipe {
			n, err := r.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "cleared %s entries\n", humanize.Comma(n))
			return nil
		}
		entries, err := r.List(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "no history")
			return nil
		}
		for _, e := range entries {
			sc := "-"
			if e.Scene.Valid {
				sc = e.Scene.String
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", humanize.Time(e.CreatedAt), e.Operation, sc, e.Summary)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().Bool("clear", false, "Delete every journal entry")
	rootCmd.AddCommand(historyCmd)
}
