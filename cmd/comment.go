package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"devtask/internal/models"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Task comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <task-id> <text...>",
	Short: "Comment on a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentAdd,
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply <comment-id> <text...>",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentReply,
}

var commentListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "Show the comment thread of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete your comment and all replies to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentDelete,
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentDeleteCmd)
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	c, err := s.comments.Add(ctx, args[0], strings.Join(args[1:], " "), user)
	if err != nil {
		return err
	}
	return printComment(c)
}

func runCommentReply(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	c, err := s.comments.Reply(ctx, args[0], strings.Join(args[1:], " "), user)
	if err != nil {
		return err
	}
	return printComment(c)
}

func printComment(c *models.TaskComment) error {
	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "comment": c})
		return nil
	}
	out().Success(fmt.Sprintf("Comment %s added to %s", c.ID, c.TaskID))
	return nil
}

func runCommentList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	tree, err := s.comments.List(ctx, args[0], user)
	if err != nil {
		return err
	}
	if len(tree) == 0 && !IsJSONOutput() {
		out().Info("No comments")
		return nil
	}
	out().Comments(tree)
	return nil
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	removed, err := s.comments.Delete(ctx, args[0], user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "removed": removed})
		return nil
	}
	out().Success(fmt.Sprintf("Deleted %d comment(s)", removed))
	return nil
}
