package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtask/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the session user and workspace",
	RunE:  runWhoami,
}

var loginCmd = &cobra.Command{
	Use:   "login <id|email>",
	Short: "Act as a user in subsequent commands",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session user",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s := svc()
	override := asUser
	if override == "" {
		override = cfg.User
	}
	ref, source, err := s.session.Current(override)
	if err != nil {
		return err
	}
	user, err := s.users.Resolve(cmd.Context(), ref)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{
			"user":     user,
			"source":   source,
			"database": cfg.DBPath,
			"env":      cfg.Env,
		})
		return nil
	}

	fmt.Printf("User:     %s <%s>\n", user.UserID, user.Email)
	fmt.Printf("Name:     %s\n", user.DisplayName())
	fmt.Printf("Session:  %s\n", source)
	fmt.Printf("Database: %s\n", cfg.DBPath)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	s := svc()
	user, err := s.users.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	source, err := s.session.Login(user.UserID)
	if err != nil {
		return err
	}
	logger.WithField("user", user.UserID).WithField("store", source).Info("logged in")

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "user_id": user.UserID, "source": source})
		return nil
	}
	msg := fmt.Sprintf("Logged in as %s <%s>", user.UserID, user.Email)
	if source == session.SourceDatabase {
		msg += " (keyring unavailable, stored in workspace)"
	}
	out().Success(msg)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := svc().session.Logout(); err != nil {
		return err
	}
	out().Success("Logged out")
	return nil
}
