package models

import (
	"time"

	"gorm.io/gorm"
)

// HistoryIDPrefix prefixes generated history entry IDs
const HistoryIDPrefix = "hist-"

// TaskHistory records changes to tasks
type TaskHistory struct {
	ID        string    `gorm:"primaryKey;size:30" json:"id"`
	TaskID    string    `gorm:"size:30;index;not null" json:"task_id"`
	Field     string    `gorm:"size:50;not null" json:"field"`
	OldValue  string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangedBy string    `gorm:"size:30" json:"changed_by,omitempty"`
	ChangedAt time.Time `gorm:"autoCreateTime" json:"changed_at"`
}

// TableName specifies the table name for TaskHistory
func (TaskHistory) TableName() string {
	return "task_history"
}

// BeforeCreate hook to generate ID
func (h *TaskHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = generatePrefixedID(HistoryIDPrefix)
	}
	return nil
}

// RecordChange creates a history entry for a field change
func RecordChange(db *gorm.DB, taskID, field, oldValue, newValue, changedBy string) error {
	if oldValue == newValue {
		return nil // No change
	}
	entry := &TaskHistory{
		TaskID:    taskID,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: changedBy,
	}
	return db.Create(entry).Error
}
