package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Dependency management",
}

var depSetCmd = &cobra.Command{
	Use:   "set <task-id> [dependency-id...]",
	Short: "Replace the dependencies of a task",
	Long: `Replace the full dependency set of a task you own.

Example: if task B cannot start until tasks A1 and A2 are done:
  devtask dep set <task-B> <task-A1> <task-A2>

Passing no dependency IDs clears the set. Every dependency must be a task
you own, and a task cannot depend on itself. B will not appear in
'devtask task ready' until A1 and A2 are completed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDepSet,
}

var depListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List the tasks a task depends on",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepList,
}

var depDependentsCmd = &cobra.Command{
	Use:   "dependents <task-id>",
	Short: "List the tasks that depend on a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepDependents,
}

func init() {
	rootCmd.AddCommand(depCmd)
	depCmd.AddCommand(depSetCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depDependentsCmd)
}

func runDepSet(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	ids, err := s.graph.Set(ctx, args[0], splitList(args[1:]), user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "task_id": args[0], "dependency_ids": ids})
		return nil
	}
	if len(ids) == 0 {
		out().Success(fmt.Sprintf("Cleared dependencies of %s", args[0]))
		return nil
	}
	out().Success(fmt.Sprintf("%s now depends on %d task(s)", args[0], len(ids)))
	return nil
}

func runDepList(cmd *cobra.Command, args []string) error {
	return listEdges(cmd, args[0], false)
}

func runDepDependents(cmd *cobra.Command, args []string) error {
	return listEdges(cmd, args[0], true)
}

func listEdges(cmd *cobra.Command, taskID string, reverse bool) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	if _, err := s.tasks.Get(ctx, taskID, user); err != nil {
		return err
	}

	key, title := "dependencies", "Depends on"
	lookup := s.graph.DependenciesOf
	if reverse {
		key, title = "dependents", "Blocks"
		lookup = s.graph.DependentsOf
	}
	ids, err := lookup(ctx, taskID)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"task_id": taskID, "count": len(ids), key: ids})
		return nil
	}
	fmt.Printf("%s (%d):\n", title, len(ids))
	for _, id := range ids {
		fmt.Printf("  - %s\n", id)
	}
	return nil
}
