package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType classifies a notification
type NotificationType string

// Notification types
const (
	NotificationGeneral        NotificationType = "general"
	NotificationComment        NotificationType = "comment"
	NotificationCommentReply   NotificationType = "comment_reply"
	NotificationTaskAssignment NotificationType = "task_assignment"
	NotificationProjectInvite  NotificationType = "project_invite"
)

// Notification is a message delivered to one user's inbox
type Notification struct {
	ID               string           `gorm:"primaryKey;size:36" json:"id"`
	RecipientUserID  string           `gorm:"size:30;not null;index" json:"recipient_user_id"`
	Message          string           `gorm:"type:text;not null" json:"message"`
	Type             NotificationType `gorm:"size:20;default:general" json:"type"`
	RelatedTaskID    *string          `gorm:"size:30" json:"related_task_id,omitempty"`
	RelatedProjectID *string          `gorm:"size:30" json:"related_project_id,omitempty"`
	IsRead           bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate hook to generate ID and default type
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = NotificationGeneral
	}
	return nil
}

// ValidNotificationType reports whether t is a known type
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationGeneral, NotificationComment, NotificationCommentReply,
		NotificationTaskAssignment, NotificationProjectInvite:
		return true
	}
	return false
}
