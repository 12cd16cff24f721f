package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/models"
	"devtask/internal/tasks"
)

var (
	listStatus  string
	listProject string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks you own or share through a project",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	taskCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status")
	listCmd.Flags().StringVar(&listProject, "project", "", "Filter by project ID")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	rows, err := s.tasks.List(ctx, user, tasks.ListFilter{
		Status:    models.TaskStatus(listStatus),
		ProjectID: listProject,
	})
	if err != nil {
		return err
	}

	if len(rows) == 0 && !IsJSONOutput() {
		out().Info("No tasks found")
		return nil
	}
	out().TaskList(rows, "Tasks")
	return nil
}
