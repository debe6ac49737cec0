package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark [word]",
	Short: "Toggle a word's bookmark, or list bookmarked words",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 0 {
			ids := rt.engine.Bookmarked()
			if len(ids) == 0 {
				fmt.Println("No bookmarked words.")
				return nil
			}
			for _, id := range ids {
				fmt.Printf("%-10s  %3.0f%%\n", id, rt.engine.CurrentMastery(id)*100)
			}
			return nil
		}

		marked, err := rt.engine.ToggleBookmark(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if marked {
			fmt.Printf("Bookmarked %s.\n", args[0])
		} else {
			fmt.Printf("Removed bookmark from %s.\n", args[0])
		}
		return nil
	},
}
