package models

import (
	"time"
)

// TaskDependency is a directed edge: TaskID cannot be considered ready until DependsOnID is resolved
type TaskDependency struct {
	TaskID      string    `gorm:"primaryKey;size:30" json:"task_id"`
	DependsOnID string    `gorm:"primaryKey;size:30;index:idx_depends_on" json:"depends_on_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for TaskDependency
func (TaskDependency) TableName() string {
	return "task_dependencies"
}

// IsSelfLoop returns true if the edge points back at its own task
func (d *TaskDependency) IsSelfLoop() bool {
	return d.TaskID == d.DependsOnID
}
