package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/models"
	"devtask/internal/tasks"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
	updatePriority    string
	updateDue         string
	updateClearDue    bool
	updateEstimate    float64
	updateActual      float64
	updateTags        []string
	updateDeps        []string
	updateClearDeps   bool
	updateProject     string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Long: `Update fields of a task you own. Only the flags you pass are changed.

Tags given with --tag are added to the existing ones (created if missing).
Dependencies given with --dep replace the whole set; --no-deps clears it.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	taskCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "New due date")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "Remove the due date")
	updateCmd.Flags().Float64Var(&updateEstimate, "estimate", 0, "Estimated hours")
	updateCmd.Flags().Float64Var(&updateActual, "actual", 0, "Actual hours")
	updateCmd.Flags().StringArrayVarP(&updateTags, "tag", "t", nil, "Add tag")
	updateCmd.Flags().StringArrayVar(&updateDeps, "dep", nil, "Dependency ID (replaces the set)")
	updateCmd.Flags().BoolVar(&updateClearDeps, "no-deps", false, "Remove all dependencies")
	updateCmd.Flags().StringVar(&updateProject, "project", "", "Move to project (empty string detaches)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	in, err := buildUpdateInput(cmd)
	if err != nil {
		return err
	}

	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	task, err := s.tasks.Update(ctx, args[0], in, user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().Task(task)
		return nil
	}
	out().Success("Updated: " + task.ID)
	return nil
}

// buildUpdateInput maps the flags that were set onto a partial update
func buildUpdateInput(cmd *cobra.Command) (tasks.UpdateInput, error) {
	var in tasks.UpdateInput
	flags := cmd.Flags()

	if flags.Changed("title") {
		in.Title = &updateTitle
	}
	if flags.Changed("description") {
		in.Description = &updateDescription
	}
	if flags.Changed("status") {
		status := models.TaskStatus(updateStatus)
		in.Status = &status
	}
	if flags.Changed("priority") {
		priority := models.Priority(updatePriority)
		in.Priority = &priority
	}
	if updateClearDue {
		in.ClearDueDate = true
	} else if flags.Changed("due") {
		due, err := parseDueDate(updateDue)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}
	if flags.Changed("estimate") {
		in.EstimatedTime = &updateEstimate
	}
	if flags.Changed("actual") {
		in.ActualTime = &updateActual
	}
	if flags.Changed("tag") {
		in.Tags = splitList(updateTags)
	}
	if updateClearDeps {
		in.DependencyIDs = &[]string{}
	} else if flags.Changed("dep") {
		deps := splitList(updateDeps)
		in.DependencyIDs = &deps
	}
	if flags.Changed("project") {
		in.ProjectID = &updateProject
	}
	return in, nil
}
