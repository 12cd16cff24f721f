package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/tasks"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search visible tasks by title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	taskCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	matches, err := s.tasks.List(ctx, user, tasks.ListFilter{Query: args[0]})
	if err != nil {
		return err
	}

	if len(matches) == 0 && !IsJSONOutput() {
		out().Info("No matches found")
		return nil
	}
	out().TaskList(matches, "Matches")
	return nil
}
