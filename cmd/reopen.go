package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/apperr"
	"devtask/internal/models"
	"devtask/internal/tasks"
)

var reopenStatus string

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a completed or cancelled task",
	Args:  cobra.ExactArgs(1),
	RunE:  runReopen,
}

func init() {
	taskCmd.AddCommand(reopenCmd)
	reopenCmd.Flags().StringVarP(&reopenStatus, "status", "s", string(models.StatusNotStarted), "Status to reopen with")
}

func runReopen(cmd *cobra.Command, args []string) error {
	status := models.TaskStatus(reopenStatus)
	probe := models.Task{Status: status}
	if !status.Valid() || !probe.IsOpen() {
		return apperr.InvalidArgument("cannot reopen task %s with status %q", args[0], reopenStatus)
	}

	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	task, err := s.tasks.Get(ctx, args[0], user)
	if err != nil {
		return err
	}
	if task.IsOpen() {
		return apperr.InvalidArgument("cannot reopen task %s: it is still open (status: %s)", task.ID, task.Status)
	}
	return setStatus(cmd, task.ID, tasks.UpdateInput{Status: &status}, "Reopened: ")
}
