package models

import (
	"strings"
	"time"
)

// MaxTagsPerTask is the number of unique tags a task may carry
const MaxTagsPerTask = 3

// Tag is a label from the global, shared tag namespace
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TaskTagLink links tags to tasks (many-to-many)
type TaskTagLink struct {
	TaskID    string    `gorm:"primaryKey;size:30" json:"task_id"`
	TagID     uint      `gorm:"primaryKey;index" json:"tag_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for TaskTagLink
func (TaskTagLink) TableName() string {
	return "task_tag_links"
}

// NormalizeTagName trims surrounding whitespace from a tag name
func NormalizeTagName(name string) string {
	return strings.TrimSpace(name)
}
