package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/models"
	"devtask/internal/tasks"
)

var (
	createDescription string
	createStatus      string
	createPriority    string
	createDue         string
	createEstimate    float64
	createActual      float64
	createTags        []string
	createDeps        []string
	createProject     string
)

var createCmd = &cobra.Command{
	Use:   "create \"title\"",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	taskCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Description")
	createCmd.Flags().StringVarP(&createStatus, "status", "s", "", "Status (default not_started)")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "Priority (low/medium/high)")
	createCmd.Flags().StringVar(&createDue, "due", "", "Due date (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
	createCmd.Flags().Float64Var(&createEstimate, "estimate", 0, "Estimated hours (default 0.25)")
	createCmd.Flags().Float64Var(&createActual, "actual", 0, "Actual hours (default 0.25)")
	createCmd.Flags().StringArrayVarP(&createTags, "tag", "t", nil, "Existing tag names (max 3)")
	createCmd.Flags().StringArrayVar(&createDeps, "dep", nil, "IDs of tasks this one depends on")
	createCmd.Flags().StringVar(&createProject, "project", "", "Project ID")
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}

	in := tasks.CreateInput{
		Title:         args[0],
		Description:   createDescription,
		Status:        models.TaskStatus(createStatus),
		Priority:      models.Priority(createPriority),
		Tags:          splitList(createTags),
		DependencyIDs: splitList(createDeps),
	}
	if createDue != "" {
		if in.DueDate, err = parseDueDate(createDue); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("estimate") {
		in.EstimatedTime = &createEstimate
	}
	if cmd.Flags().Changed("actual") {
		in.ActualTime = &createActual
	}
	if createProject != "" {
		in.ProjectID = &createProject
	}

	task, err := s.tasks.Create(ctx, user, in)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().Task(task)
		return nil
	}
	out().Success("Created: " + task.ID + " - " + task.Title)
	return nil
}
