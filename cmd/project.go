package cmd

import (
	"github.com/spf13/cobra"
)

var projectDescription string

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Project management",
	Aliases: []string{"p"},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create \"title\"",
	Short: "Create a project owned by you",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project and its members",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the projects you belong to",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project you own; its tasks become standalone",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	projectCreateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Description")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	p, err := s.projects.Create(ctx, user, args[0], projectDescription)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "project": p})
		return nil
	}
	out().Success("Created project: " + p.ID + " - " + p.Title)
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	p, err := s.projects.Get(ctx, args[0], user)
	if err != nil {
		return err
	}
	members, err := s.projects.Members(ctx, p.ID, user)
	if err != nil {
		return err
	}
	out().Project(p, members)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	rows, err := s.projects.ListForUser(ctx, user)
	if err != nil {
		return err
	}
	if len(rows) == 0 && !IsJSONOutput() {
		out().Info("No projects")
		return nil
	}
	out().ProjectList(rows)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, args[0], user); err != nil {
		return err
	}
	out().Success("Deleted project " + args[0])
	return nil
}
