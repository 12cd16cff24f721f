package cmd

import (
	"github.com/spf13/cobra"
)

var userFullName string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User accounts",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRegister,
}

var userShowCmd = &cobra.Command{
	Use:   "show <id|email>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userShowCmd)

	userRegisterCmd.Flags().StringVarP(&userFullName, "name", "n", "", "Full name")
}

func runUserRegister(cmd *cobra.Command, args []string) error {
	user, err := svc().users.Register(cmd.Context(), args[0], userFullName)
	if err != nil {
		return err
	}

	f := out()
	if IsJSONOutput() {
		f.JSON(map[string]interface{}{"success": true, "user": user})
		return nil
	}
	f.Success("Registered: " + user.UserID + " <" + user.Email + ">")
	return nil
}

func runUserShow(cmd *cobra.Command, args []string) error {
	user, err := svc().users.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	f := out()
	if IsJSONOutput() {
		f.JSON(user)
		return nil
	}
	f.KeyValue("ID", user.UserID)
	f.KeyValue("Email", user.Email)
	f.KeyValue("Name", user.DisplayName())
	return nil
}
