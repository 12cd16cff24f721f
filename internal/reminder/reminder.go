// Package reminder periodically notifies assignees about due and overdue tasks.
//
// Reminders are not deduplicated: every run sends again for every task that
// still qualifies. Receivers must tolerate repeats.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/models"
	"devtask/internal/notify"
)

// DefaultInterval is the pause between two checks in watch mode
const DefaultInterval = 24 * time.Hour

// Checker scans open tasks with a due date
type Checker struct {
	db   *gorm.DB
	sink notify.Sink
	log  *logrus.Entry
}

// New creates a Checker
func New(database *gorm.DB, sink notify.Sink, log *logrus.Entry) *Checker {
	return &Checker{db: database, sink: sink, log: log}
}

// Message returns the reminder text for a task due at due, evaluated at now,
// and false when the task is not due yet. Days are compared in now's location.
func Message(title string, due, now time.Time) (string, bool) {
	due = due.In(now.Location())
	today := dayOf(now)
	switch dayOf(due) {
	case today.AddDate(0, 0, 1):
		return fmt.Sprintf("Reminder: Task '%s' is due tomorrow.", title), true
	case today:
		return fmt.Sprintf("Task '%s' is due today!", title), true
	}
	if due.Before(now) {
		return fmt.Sprintf("Task '%s' is overdue!", title), true
	}
	return "", false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckOnce sends one reminder per assignment row of every qualifying task.
// It returns the number of reminders handed to the sink.
func (c *Checker) CheckOnce(ctx context.Context, now time.Time) (int, error) {
	var tasks []models.Task
	err := c.db.WithContext(ctx).
		Where("due_date IS NOT NULL").
		Where("status NOT IN ?", []string{string(models.StatusCompleted), string(models.StatusCancelled)}).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks with due dates: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		msg, ok := Message(task.Title, *task.DueDate, now)
		if !ok {
			continue
		}

		var assignments []models.TaskAssignment
		if err := c.db.WithContext(ctx).Where("task_id = ?", task.ID).Find(&assignments).Error; err != nil {
			return sent, fmt.Errorf("failed to load assignments of task %s: %w", task.ID, err)
		}
		for _, a := range assignments {
			notify.Send(ctx, c.sink, c.log, notify.TaskNotification(a.UserID, msg, models.NotificationGeneral, task.ID))
			sent++
		}
	}

	if c.log != nil {
		c.log.WithFields(logrus.Fields{"tasks": len(tasks), "reminders": sent}).Info("due date check finished")
	}
	return sent, nil
}

// Run checks immediately and then on every tick of interval until ctx ends.
// Failed checks are logged and retried on the next tick.
func (c *Checker) Run(ctx context.Context, interval time.Duration, now func() time.Time) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.CheckOnce(ctx, now()); err != nil && c.log != nil {
			c.log.WithError(err).Error("due date check failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
