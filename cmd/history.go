package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hanzo/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sessions and milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		milestones, _ := cmd.Flags().GetBool("milestones")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if milestones {
			return printMilestones(cmd, s.EventRepo(), opts)
		}

		sessions, err := s.EventRepo().QuerySessionSummaries(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		fmt.Printf("%-19s  %-8s  %-16s  %9s  %8s  %8s  %s\n",
			"Timestamp", "Kind", "Deck", "Answered", "Accuracy", "Mastered", "Status")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range sessions {
			accuracy := "-"
			if e.ItemsAnswered > 0 {
				accuracy = fmt.Sprintf("%.0f%%", float64(e.CorrectAnswers)/float64(e.ItemsAnswered)*100)
			}
			status := "done"
			if e.Action == store.SessionAbandoned {
				status = "ended early"
			}
			fmt.Printf("%-19s  %-8s  %-16s  %4d/%-4d  %8s  %8d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				truncate(e.DeckID, 16),
				e.ItemsAnswered, e.ItemsPlanned,
				accuracy,
				e.WordsMastered,
				status,
			)
		}
		return nil
	},
}

func printMilestones(cmd *cobra.Command, repo store.EventRepo, opts store.QueryOpts) error {
	events, err := repo.QueryMilestones(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("query milestones: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No milestones yet.")
		return nil
	}

	fmt.Printf("%-19s  %-14s  %-20s  %s\n", "Timestamp", "Kind", "Subject", "Detail")
	fmt.Println(strings.Repeat("─", 72))
	for _, e := range events {
		fmt.Printf("%-19s  %-14s  %-20s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			truncate(e.Subject, 20),
			e.Detail,
		)
	}
	return nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolP("milestones", "m", false, "Show milestones instead of sessions")
}
