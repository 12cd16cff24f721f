package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	remindWatch    bool
	remindInterval time.Duration
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send due-date reminders to assignees and watchers",
	Long: `Check every open task with a due date and notify each user assigned to it
when the task is due tomorrow, due today, or overdue.

With --watch the check repeats every --interval (default from reminder_interval
in config.yaml) until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().BoolVarP(&remindWatch, "watch", "w", false, "Keep running and check periodically")
	remindCmd.Flags().DurationVar(&remindInterval, "interval", 0, "Time between checks in watch mode")
}

func runRemind(cmd *cobra.Command, args []string) error {
	checker := svc().reminder

	if !remindWatch {
		sent, err := checker.CheckOnce(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			out().JSON(map[string]interface{}{"success": true, "sent": sent})
			return nil
		}
		out().Success(fmt.Sprintf("Sent %d reminder(s)", sent))
		return nil
	}

	interval := remindInterval
	if interval <= 0 {
		interval = cfg.ReminderInterval
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("interval", interval.String()).Info("reminder loop started")
	if !IsJSONOutput() {
		fmt.Fprintf(os.Stderr, "Checking due dates every %s (Ctrl+C to stop)\n", interval)
	}
	err := checker.Run(ctx, interval, time.Now)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
