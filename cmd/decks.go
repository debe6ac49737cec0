package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var decksCmd = &cobra.Command{
	Use:   "decks [deck-id]",
	Short: "List decks, or the words of one deck",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 1 {
			return printDeckWords(rt, args[0])
		}

		decks, err := rt.engine.Decks()
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			fmt.Println("The catalog has no decks.")
			return nil
		}

		fmt.Printf("%-16s  %-24s  %-12s  %-13s  %9s  %8s  %s\n",
			"ID", "Name", "Category", "Stage", "Mastered", "Sessions", "Exam")
		fmt.Println(strings.Repeat("─", 103))
		for _, d := range decks {
			exam := "locked"
			switch {
			case d.ExamPassed:
				exam = "passed"
			case d.ExamUnlocked:
				exam = "ready"
			}
			fmt.Printf("%-16s  %-24s  %-12s  %-13s  %4d/%-4d  %8d  %s\n",
				truncate(d.Deck.ID, 16),
				truncate(d.Deck.Name, 24),
				truncate(d.Deck.Category, 12),
				d.Stage,
				d.Mastered, d.Words,
				d.SessionsCompleted,
				exam,
			)
		}
		return nil
	},
}

func printDeckWords(rt *env, deckID string) error {
	words, err := rt.engine.Words(deckID)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s  %-18s  %-28s  %8s  %5s  %s\n",
		"Hanzi", "Pinyin", "Translation", "Mastery", "Stage", "")
	fmt.Println(strings.Repeat("─", 84))
	for _, w := range words {
		var flags []string
		if !w.Unlocked {
			flags = append(flags, "locked")
		}
		if w.Mastered {
			flags = append(flags, "mastered")
		}
		if w.Bookmarked {
			flags = append(flags, "*")
		}
		fmt.Printf("%-10s  %-18s  %-28s  %7.0f%%  %5d  %s\n",
			w.Word.Hanzi,
			truncate(w.Word.Pinyin, 18),
			truncate(w.Word.Translation(), 28),
			w.Record.Mastery*100,
			w.Stage,
			strings.Join(flags, " "),
		)
	}
	return nil
}
