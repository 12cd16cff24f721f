// Package notify delivers user notifications and serves the notification inbox.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/models"
)

// Sink accepts notifications for delivery
type Sink interface {
	Notify(ctx context.Context, n models.Notification) error
}

// StoreSink persists notifications as inbox rows
type StoreSink struct {
	db *gorm.DB
}

// NewStoreSink creates a StoreSink over database
func NewStoreSink(database *gorm.DB) *StoreSink {
	return &StoreSink{db: database}
}

// Notify writes n to the notifications table
func (s *StoreSink) Notify(ctx context.Context, n models.Notification) error {
	return s.db.WithContext(ctx).Create(&n).Error
}

// Send hands n to sink and swallows any failure after logging it.
// Callers invoke it after their transaction has committed.
func Send(ctx context.Context, sink Sink, log *logrus.Entry, n models.Notification) {
	if sink == nil {
		return
	}
	if err := sink.Notify(ctx, n); err != nil && log != nil {
		log.WithFields(logrus.Fields{
			"recipient": n.RecipientUserID,
			"type":      n.Type,
		}).WithError(err).Warn("notification dropped")
	}
}

// TaskNotification builds a notification about a task
func TaskNotification(recipient, message string, kind models.NotificationType, taskID string) models.Notification {
	return models.Notification{
		RecipientUserID: recipient,
		Message:         message,
		Type:            kind,
		RelatedTaskID:   &taskID,
	}
}

// ProjectNotification builds a notification about a project
func ProjectNotification(recipient, message string, kind models.NotificationType, projectID string) models.Notification {
	return models.Notification{
		RecipientUserID:  recipient,
		Message:          message,
		Type:             kind,
		RelatedProjectID: &projectID,
	}
}
