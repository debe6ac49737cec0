package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Inspect or adjust word mastery",
}

var masteryGetCmd = &cobra.Command{
	Use:   "get <word>",
	Short: "Print a word's mastery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Printf("%s  %.2f\n", args[0], rt.engine.CurrentMastery(args[0]))
		return nil
	},
}

var masterySetCmd = &cobra.Command{
	Use:   "set <word> <value>",
	Short: "Overwrite a word's mastery (0 to 1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid mastery %q: %w", args[1], err)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("mastery must be between 0 and 1, got %v", value)
		}

		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.SetMastery(cmd.Context(), args[0], value); err != nil {
			return err
		}
		fmt.Printf("%s  %.2f\n", args[0], rt.engine.CurrentMastery(args[0]))
		return nil
	},
}

func init() {
	masteryCmd.AddCommand(masteryGetCmd)
	masteryCmd.AddCommand(masterySetCmd)
}
