package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "The shared tag catalog",
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all tags",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runTagList,
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tag so tasks can use it at creation time",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagCreate,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagCreateCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	rows, err := svc().tags.List(cmd.Context())
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"count": len(rows), "tags": rows})
		return nil
	}
	if len(rows) == 0 {
		fmt.Println("No tags")
		return nil
	}
	for _, t := range rows {
		fmt.Println(t.Name)
	}
	return nil
}

func runTagCreate(cmd *cobra.Command, args []string) error {
	// Tags are global, but creating one still requires an account.
	ctx, s, _, err := withUser(cmd)
	if err != nil {
		return err
	}
	tag, err := s.tags.Create(ctx, args[0])
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "tag": tag})
		return nil
	}
	out().Success("Created tag: " + tag.Name)
	return nil
}
