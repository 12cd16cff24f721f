package notify

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
)

// Inbox reads and manages a user's notifications
type Inbox struct {
	db *gorm.DB
}

// NewInbox creates an Inbox over database
func NewInbox(database *gorm.DB) *Inbox {
	return &Inbox{db: database}
}

// CreateInput is a manually sent notification
type CreateInput struct {
	RecipientUserID  string
	Message          string
	Type             models.NotificationType
	RelatedTaskID    *string
	RelatedProjectID *string
}

// Create stores a notification from sender to another user
func (i *Inbox) Create(ctx context.Context, sender string, in CreateInput) (*models.Notification, error) {
	if in.RecipientUserID == sender {
		return nil, apperr.InvalidArgument("cannot send a notification to yourself")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperr.InvalidArgument("message is required")
	}
	if in.Type == "" {
		in.Type = models.NotificationGeneral
	}
	if !models.ValidNotificationType(in.Type) {
		return nil, apperr.InvalidArgument("invalid notification type %q", in.Type)
	}

	tx := i.db.WithContext(ctx)
	recipient, err := db.FindUser(tx, in.RecipientUserID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load user %s", in.RecipientUserID)
	}
	if recipient == nil {
		return nil, apperr.NotFound("user %s not found", in.RecipientUserID)
	}

	n := &models.Notification{
		RecipientUserID:  in.RecipientUserID,
		Message:          message,
		Type:             in.Type,
		RelatedTaskID:    in.RelatedTaskID,
		RelatedProjectID: in.RelatedProjectID,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to store notification")
	}
	return n, nil
}

// List returns userID's notifications, newest first
func (i *Inbox) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := i.db.WithContext(ctx).Where("recipient_user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var rows []models.Notification
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list notifications")
	}
	return rows, nil
}

// MarkRead flags a notification as read; only its recipient may do so
func (i *Inbox) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n *models.Notification
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = i.owned(tx, id, userID)
		if err != nil {
			return err
		}
		n.IsRead = true
		return apperr.FromDB(tx.Model(n).UpdateColumn("is_read", true).Error, "failed to update notification %s", id)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a notification; only its recipient may do so
func (i *Inbox) Delete(ctx context.Context, id, userID string) error {
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := i.owned(tx, id, userID)
		if err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(n).Error, "failed to delete notification %s", id)
	})
}

func (i *Inbox) owned(tx *gorm.DB, id, userID string) (*models.Notification, error) {
	var n models.Notification
	if err := tx.Where("id = ?", id).Take(&n).Error; err != nil {
		return nil, apperr.FromDB(err, "notification %s not found", id)
	}
	if n.RecipientUserID != userID {
		return nil, apperr.Forbidden("not authorized to modify notification %s", id)
	}
	return &n, nil
}
