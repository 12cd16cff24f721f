package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskComment is a comment on a task; replies point at their parent
type TaskComment struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID          string    `gorm:"size:30;not null;index" json:"task_id"`
	UserID          string    `gorm:"size:30;not null" json:"user_id"`
	ParentCommentID *string   `gorm:"size:36;index" json:"parent_comment_id,omitempty"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for TaskComment
func (TaskComment) TableName() string {
	return "task_comments"
}

// BeforeCreate hook to generate ID if not set
func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsReply returns true if the comment answers another comment
func (c *TaskComment) IsReply() bool {
	return c.ParentCommentID != nil && *c.ParentCommentID != ""
}
