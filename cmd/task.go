package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"devtask/internal/apperr"
	"devtask/internal/models"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Task management",
	Aliases: []string{"t"},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task with its tags, dependencies, assignments and comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskUntagCmd = &cobra.Command{
	Use:   "untag <id> <tag>",
	Short: "Remove a tag from a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskUntag,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskUntagCmd)
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, args[0], user); err != nil {
		return err
	}
	out().Success("Deleted: " + args[0])
	return nil
}

func runTaskUntag(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	task, err := s.tasks.RemoveTag(ctx, args[0], args[1], user)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		out().Task(task)
		return nil
	}
	out().Success(fmt.Sprintf("Removed tag %q from %s", models.NormalizeTagName(args[1]), task.ID))
	return nil
}

// parseDueDate accepts "2006-01-02" or "2006-01-02 15:04" in local time.
// A bare date means the end of that day.
func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(models.DateTimeShortFormat, value, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(models.DateFormat, value, time.Local)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid due date %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", value)
	}
	t = t.Add(24*time.Hour - time.Minute)
	return &t, nil
}

// splitList flattens repeated and comma-separated flag values, dropping blanks
func splitList(values []string) []string {
	var result []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
