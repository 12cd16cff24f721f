package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtask/internal/models"
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Project membership",
}

var memberInviteCmd = &cobra.Command{
	Use:   "invite <project-id> <user>",
	Short: "Add a user to a project you own",
	Args:  cobra.ExactArgs(2),
	RunE:  runMemberInvite,
}

var memberListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List project members",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemberList,
}

var memberRoleCmd = &cobra.Command{
	Use:   "role <project-id> <user> <owner|member>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(3),
	RunE:  runMemberRole,
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove <project-id> <user>",
	Short: "Remove a member from a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runMemberRemove,
}

func init() {
	rootCmd.AddCommand(memberCmd)
	memberCmd.AddCommand(memberInviteCmd)
	memberCmd.AddCommand(memberListCmd)
	memberCmd.AddCommand(memberRoleCmd)
	memberCmd.AddCommand(memberRemoveCmd)
}

func runMemberInvite(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	invitee, err := resolveUser(ctx, s, args[1])
	if err != nil {
		return err
	}
	m, err := s.projects.Invite(ctx, args[0], invitee, user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "member": m})
		return nil
	}
	out().Success(fmt.Sprintf("Added %s to %s", m.UserID, m.ProjectID))
	return nil
}

func runMemberList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	members, err := s.projects.Members(ctx, args[0], user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"count": len(members), "members": members})
		return nil
	}
	for _, m := range members {
		fmt.Printf("%-14s %s\n", m.UserID, m.Role)
	}
	return nil
}

func runMemberRole(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	target, err := resolveUser(ctx, s, args[1])
	if err != nil {
		return err
	}
	m, err := s.projects.UpdateRole(ctx, args[0], target, args[2], user)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "member": m})
		return nil
	}
	role := m.Role
	if role == models.RoleOwner {
		role = "an owner"
	} else {
		role = "a member"
	}
	out().Success(fmt.Sprintf("%s is now %s of %s", m.UserID, role, m.ProjectID))
	return nil
}

func runMemberRemove(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	target, err := resolveUser(ctx, s, args[1])
	if err != nil {
		return err
	}
	if err := s.projects.RemoveMember(ctx, args[0], target, user); err != nil {
		return err
	}
	out().Success(fmt.Sprintf("Removed %s from %s", target, args[0]))
	return nil
}
