package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hanzo/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		e := rt.engine
		decks, err := e.Decks()
		if err != nil {
			return err
		}
		decksMastered, words := 0, 0
		for _, d := range decks {
			words += d.Words
			if d.ExamPassed {
				decksMastered++
			}
		}

		sessions, err := rt.store.EventRepo().QuerySessionSummaries(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		var completed, abandoned, answered, correct int
		for _, s := range sessions {
			if s.Action == store.SessionAbandoned {
				abandoned++
			} else {
				completed++
			}
			answered += s.ItemsAnswered
			correct += s.CorrectAnswers
		}

		fmt.Println("Progress")
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("%-24s %d / %d\n", "Words mastered", e.MasteredWordCount(), words)
		fmt.Printf("%-24s %d / %d\n", "Decks mastered", decksMastered, len(decks))
		fmt.Printf("%-24s %d / %d\n", "Badges", len(e.Badges()), len(e.Catalog().Categories()))
		fmt.Printf("%-24s %d\n", "Bookmarked words", len(e.Bookmarked()))

		fmt.Println()
		fmt.Println("Sessions")
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("%-24s %d\n", "Completed", completed)
		fmt.Printf("%-24s %d\n", "Ended early", abandoned)
		fmt.Printf("%-24s %d\n", "Answers", answered)
		if answered > 0 {
			fmt.Printf("%-24s %.0f%%\n", "Accuracy", float64(correct)/float64(answered)*100)
		}
		return nil
	},
}
