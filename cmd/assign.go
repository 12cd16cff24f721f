package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtask/internal/assignments"
)

var assignWatcher bool

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Task assignees and watchers",
}

var assignAddCmd = &cobra.Command{
	Use:   "add <task-id> <user>",
	Short: "Assign a user to a task (or add a watcher with --watcher)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssignAdd,
}

var assignWatchCmd = &cobra.Command{
	Use:   "watch <task-id> [user]",
	Short: "Watch a task (yourself when no user is given)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAssignWatch,
}

var assignListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List assignees and watchers of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssignList,
}

var assignRemoveCmd = &cobra.Command{
	Use:   "remove <assignment-id>",
	Short: "Remove an assignment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssignRemove,
}

func init() {
	rootCmd.AddCommand(assignCmd)
	assignCmd.AddCommand(assignAddCmd)
	assignCmd.AddCommand(assignWatchCmd)
	assignCmd.AddCommand(assignListCmd)
	assignCmd.AddCommand(assignRemoveCmd)

	assignAddCmd.Flags().BoolVarP(&assignWatcher, "watcher", "w", false, "Add as watcher instead of assignee")
}

func runAssignAdd(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	target, err := resolveUser(ctx, s, args[1])
	if err != nil {
		return err
	}
	a, err := s.assignments.Assign(ctx, assignments.AssignInput{
		TaskID:    args[0],
		UserID:    target,
		IsWatcher: assignWatcher,
	}, user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "assignment": a})
		return nil
	}
	out().Success(fmt.Sprintf("%s is now %s of %s (%s)", a.UserID, article(a.Role()), a.TaskID, a.ID))
	return nil
}

func runAssignWatch(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	target := user
	if len(args) == 2 {
		if target, err = resolveUser(ctx, s, args[1]); err != nil {
			return err
		}
	}
	a, err := s.assignments.Watch(ctx, args[0], target, user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "assignment": a})
		return nil
	}
	out().Success(fmt.Sprintf("%s is watching %s (%s)", a.UserID, a.TaskID, a.ID))
	return nil
}

func runAssignList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	rows, err := s.assignments.List(ctx, args[0], user)
	if err != nil {
		return err
	}
	out().Assignments(rows)
	return nil
}

func runAssignRemove(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	if err := s.assignments.Remove(ctx, args[0], user); err != nil {
		return err
	}
	out().Success("Removed assignment " + args[0])
	return nil
}

func article(role string) string {
	if role == "assignee" {
		return "an assignee"
	}
	return "a " + role
}
