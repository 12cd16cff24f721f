package cmd

import (
	"github.com/spf13/cobra"

	"devtask/internal/models"
	"devtask/internal/notify"
)

var (
	notifyUnread  bool
	notifyType    string
	notifyTask    string
	notifyProject string
)

var notifyCmd = &cobra.Command{
	Use:     "notify",
	Short:   "Your notification inbox",
	Aliases: []string{"inbox"},
}

var notifyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List notifications, newest first",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runNotifyList,
}

var notifyReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyRead,
}

var notifyDeleteCmd = &cobra.Command{
	Use:   "delete <notification-id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyDelete,
}

var notifySendCmd = &cobra.Command{
	Use:   "send <user> <message>",
	Short: "Send a notification to another user",
	Args:  cobra.ExactArgs(2),
	RunE:  runNotifySend,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyReadCmd)
	notifyCmd.AddCommand(notifyDeleteCmd)
	notifyCmd.AddCommand(notifySendCmd)

	notifyListCmd.Flags().BoolVarP(&notifyUnread, "unread", "u", false, "Only unread notifications")
	notifySendCmd.Flags().StringVarP(&notifyType, "type", "t", string(models.NotificationGeneral), "Notification type")
	notifySendCmd.Flags().StringVar(&notifyTask, "task", "", "Related task ID")
	notifySendCmd.Flags().StringVar(&notifyProject, "project", "", "Related project ID")
}

func runNotifyList(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	rows, err := s.inbox.List(ctx, user, notifyUnread)
	if err != nil {
		return err
	}
	out().Notifications(rows)
	return nil
}

func runNotifyRead(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	n, err := s.inbox.MarkRead(ctx, args[0], user)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "notification": n})
		return nil
	}
	out().Success("Marked read: " + n.ID)
	return nil
}

func runNotifyDelete(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	if err := s.inbox.Delete(ctx, args[0], user); err != nil {
		return err
	}
	out().Success("Deleted notification " + args[0])
	return nil
}

func runNotifySend(cmd *cobra.Command, args []string) error {
	ctx, s, user, err := withUser(cmd)
	if err != nil {
		return err
	}
	recipient, err := resolveUser(ctx, s, args[0])
	if err != nil {
		return err
	}

	in := notify.CreateInput{
		RecipientUserID: recipient,
		Message:         args[1],
		Type:            models.NotificationType(notifyType),
	}
	if notifyTask != "" {
		in.RelatedTaskID = &notifyTask
	}
	if notifyProject != "" {
		in.RelatedProjectID = &notifyProject
	}
	n, err := s.inbox.Create(ctx, user, in)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out().JSON(map[string]interface{}{"success": true, "notification": n})
		return nil
	}
	out().Success("Sent notification " + n.ID + " to " + recipient)
	return nil
}
