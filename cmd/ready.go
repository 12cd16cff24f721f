package cmd

import (
	"github.com/spf13/cobra"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show open tasks whose dependencies are all completed",
	Args:  cobra.NoArgs,
	RunE:  runReady,
}

func init() {
	taskCmd.AddCommand(readyCmd)
}

func runReady(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	ready, err := s.tasks.Ready(ctx, user)
	if err != nil {
		return err
	}

	if len(ready) == 0 && !IsJSONOutput() {
		out().Info("No ready tasks")
		return nil
	}
	out().TaskList(ready, "Ready")
	return nil
}
