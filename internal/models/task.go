package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

// Task status constants
const (
	StatusNotStarted TaskStatus = "not_started"
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusOnHold     TaskStatus = "on_hold"
	StatusCancelled  TaskStatus = "cancelled"
	StatusCompleted  TaskStatus = "completed"
)

// Priority is the urgency of a task
type Priority string

// Priority constants
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultHours is the estimated/actual time applied when a task is created without one
const DefaultHours = 0.25

// Date format constants
const (
	DateTimeFormat      = "2006-01-02 15:04:05"
	DateTimeShortFormat = "2006-01-02 15:04"
	DateFormat          = "2006-01-02"
)

// ID generation constants
const (
	IDByteLength = 4
	IDPrefix     = "dt-"
)

var taskIDPattern = regexp.MustCompile(`^dt-[a-f0-9]{8}$`)

// ValidateTaskID validates that a task ID has the correct format
func ValidateTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

// Statuses lists every status in workflow order
var Statuses = []TaskStatus{
	StatusNotStarted,
	StatusPending,
	StatusInProgress,
	StatusOnHold,
	StatusCancelled,
	StatusCompleted,
}

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// Rank orders priorities for sorting; higher is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Task is a unit of work owned by one user and optionally scoped to a project
type Task struct {
	ID            string     `gorm:"primaryKey;size:30" json:"id"`
	Title         string     `gorm:"size:255;not null;index" json:"title"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Status        TaskStatus `gorm:"size:20;default:not_started;index" json:"status"`
	IsCompleted   bool       `gorm:"default:false" json:"is_completed"`
	Priority      Priority   `gorm:"size:10;default:medium;index" json:"priority"`
	DueDate       *time.Time `gorm:"index" json:"due_date,omitempty"`
	EstimatedTime *float64   `json:"estimated_time,omitempty"`
	ActualTime    *float64   `json:"actual_time,omitempty"`
	UserID        string     `gorm:"size:30;not null;index" json:"user_id"`
	ProjectID     *string    `gorm:"size:30;index" json:"project_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime:false;not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime:false;not null" json:"updated_at"`

	// Populated by the task service, not stored on the row
	Tags          []Tag    `gorm:"-" json:"tags"`
	DependencyIDs []string `gorm:"-" json:"dependency_ids"`
}

// GenerateID creates a new hash-based task ID like "dt-a1b2c3d4"
func GenerateID() string {
	return generatePrefixedID(IDPrefix)
}

func generatePrefixedID(prefix string) string {
	bytes := make([]byte, IDByteLength)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failure indicates serious system issues - fail fast
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return prefix + hex.EncodeToString(bytes)
}

// BeforeCreate hook to generate ID if not set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = GenerateID()
	}
	return nil
}

// SetStatus changes the status and keeps IsCompleted in step with it
func (t *Task) SetStatus(s TaskStatus) {
	t.Status = s
	t.IsCompleted = s == StatusCompleted
}

// IsResolved returns true when the task no longer blocks its dependents
func (t *Task) IsResolved() bool {
	return t.Status == StatusCompleted
}

// IsOpen returns true for tasks that still need work
func (t *Task) IsOpen() bool {
	return t.Status != StatusCompleted && t.Status != StatusCancelled
}

// InProject returns true if the task is scoped to a project
func (t *Task) InProject() bool {
	return t.ProjectID != nil && *t.ProjectID != ""
}

// HasTag reports whether a tag with the given name is attached
func (t *Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// TagNames returns the attached tag names in attachment order
func (t *Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Touch refreshes UpdatedAt
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}

// HoursString formats an optional hours value
func HoursString(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fh", *h)
}
