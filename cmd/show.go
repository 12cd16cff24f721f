package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	taskCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	task, err := s.tasks.Get(ctx, args[0], user)
	if err != nil {
		return err
	}
	dependents, err := s.graph.DependentsOf(ctx, task.ID)
	if err != nil {
		return err
	}
	roster, err := s.assignments.List(ctx, task.ID, user)
	if err != nil {
		return err
	}

	f := out()
	if IsJSONOutput() {
		f.JSON(map[string]interface{}{
			"task":        task,
			"dependents":  dependents,
			"assignments": roster,
		})
		return nil
	}

	f.Task(task)
	if len(dependents) > 0 {
		f.KeyValue("Blocks", strings.Join(dependents, ", "))
	}
	f.Section("Assignments")
	f.Assignments(roster)
	return nil
}
