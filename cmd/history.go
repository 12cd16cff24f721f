package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtask/internal/tasks"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show change history for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	taskCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", tasks.DefaultHistoryLimit, "Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	rows, err := s.tasks.History(ctx, args[0], user, historyLimit)
	if err != nil {
		return err
	}

	if len(rows) == 0 && !IsJSONOutput() {
		out().Info(fmt.Sprintf("No change history for task %s", args[0]))
		return nil
	}
	out().History(rows)
	return nil
}
