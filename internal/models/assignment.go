package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskAssignment puts a user on a task, either as an assignee or as a watcher.
// A user holds at most one row per role on the same task.
type TaskAssignment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:30;not null;uniqueIndex:idx_assignment_role,priority:1" json:"task_id"`
	UserID    string    `gorm:"size:30;not null;uniqueIndex:idx_assignment_role,priority:2;index" json:"user_id"`
	IsWatcher bool      `gorm:"not null;default:false;uniqueIndex:idx_assignment_role,priority:3" json:"is_watcher"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for TaskAssignment
func (TaskAssignment) TableName() string {
	return "task_assignments"
}

// BeforeCreate hook to generate ID if not set
func (a *TaskAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Role returns "watcher" or "assignee"
func (a *TaskAssignment) Role() string {
	if a.IsWatcher {
		return "watcher"
	}
	return "assignee"
}
