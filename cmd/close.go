package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/models"
	"devtask/internal/tasks"
)

var completeActual float64

var completeCmd = &cobra.Command{
	Use:     "complete <id>",
	Short:   "Mark a task completed",
	Aliases: []string{"done", "close"},
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

func init() {
	taskCmd.AddCommand(completeCmd)
	completeCmd.Flags().Float64Var(&completeActual, "actual", 0, "Record actual hours spent")
}

func runComplete(cmd *cobra.Command, args []string) error {
	status := models.StatusCompleted
	in := tasks.UpdateInput{Status: &status}
	if cmd.Flags().Changed("actual") {
		in.ActualTime = &completeActual
	}
	return setStatus(cmd, args[0], in, "Completed: ")
}

func setStatus(cmd *cobra.Command, taskID string, in tasks.UpdateInput, verb string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	task, err := s.tasks.Update(ctx, taskID, in, user)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		out().Task(task)
		return nil
	}
	out().Success(verb + task.ID)
	return nil
}
