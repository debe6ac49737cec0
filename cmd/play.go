package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/hanzo/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive trainer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the runtime and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(app.Options{
		Engine: rt.engine,
		Events: rt.store.EventRepo(),
		Log:    rt.log,
	})
}
