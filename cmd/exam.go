package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Inspect and manage deck exams",
}

var examStatusCmd = &cobra.Command{
	Use:   "status <deck-id>",
	Short: "Show whether a deck's exam is locked, ready or passed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.engine.DeckStatus(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deck:      %s (%s)\n", st.Deck.Name, st.Deck.ID)
		fmt.Printf("Stage:     %s\n", st.Stage)
		fmt.Printf("Mastered:  %d of %d words\n", st.Mastered, st.Words)
		switch {
		case st.ExamPassed:
			fmt.Println("Exam:      passed")
		case st.ExamUnlocked:
			fmt.Println("Exam:      ready")
		default:
			fmt.Printf("Exam:      locked (%d words left to master)\n", st.Words-st.Mastered)
		}
		fmt.Printf("Badge:     %s %s\n", st.Deck.Category, earnedMark(rt.engine.IsBadgeEarned(st.Deck.Category)))
		return nil
	},
}

var examPassCmd = &cobra.Command{
	Use:   "pass <deck-id>",
	Short: "Mark a deck's exam as passed",
	Long:  "Mark a deck's exam as passed without taking it. Every word of the deck must already be mastered.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.PassExam(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deck %s mastered.\n", res.DeckID)
		if res.BadgeAwarded {
			fmt.Printf("Badge earned for %s!\n", res.Category)
		}
		return nil
	},
}

var examResetCmd = &cobra.Command{
	Use:   "reset <deck-id>",
	Short: "Clear a deck's exam result",
	Long:  "Clear a deck's exam result. Word mastery and earned badges are kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.ResetDeckExam(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Exam for %s reset.\n", args[0])
		return nil
	},
}

func earnedMark(earned bool) string {
	if earned {
		return "★ earned"
	}
	return "☆ not yet"
}

func init() {
	examCmd.AddCommand(examStatusCmd)
	examCmd.AddCommand(examPassCmd)
	examCmd.AddCommand(examResetCmd)
}
