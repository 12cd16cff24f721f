// Package testutil provides shared test fixtures: throwaway SQLite
// databases, seeded entities, a recording notification sink and a fixed clock.
package testutil

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/db"
	"devtask/internal/models"
)

// NewDB opens a migrated database in a temp directory that is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

// Logger returns a logger that discards its output.
func Logger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CreateUser inserts a user with the given ID.
func CreateUser(t *testing.T, database *gorm.DB, userID, name string) *models.User {
	t.Helper()
	user := &models.User{UserID: userID, Email: userID + "@example.com", FullName: name, IsActive: true}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", userID, err)
	}
	return user
}

// CreateProject inserts a project owned by ownerID with an owner membership row.
func CreateProject(t *testing.T, database *gorm.DB, projectID, ownerID string) *models.Project {
	t.Helper()
	project := &models.Project{ID: projectID, Title: "Project " + projectID, OwnerID: ownerID}
	if err := database.Create(project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", projectID, err)
	}
	AddMember(t, database, projectID, ownerID, models.RoleOwner)
	return project
}

// AddMember inserts a membership row.
func AddMember(t *testing.T, database *gorm.DB, projectID, userID, role string) {
	t.Helper()
	member := &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	if err := database.Create(member).Error; err != nil {
		t.Fatalf("failed to add member %s to %s: %v", userID, projectID, err)
	}
}

// CreateTask inserts a bare task row owned by ownerID.
func CreateTask(t *testing.T, database *gorm.DB, taskID, ownerID string, projectID *string) *models.Task {
	t.Helper()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID:        taskID,
		Title:     "Task " + taskID,
		Status:    models.StatusNotStarted,
		Priority:  models.PriorityMedium,
		UserID:    ownerID,
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := database.Create(task).Error; err != nil {
		t.Fatalf("failed to create task %s: %v", taskID, err)
	}
	return task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// ErrSinkDown is returned by a failing RecordingSink.
var ErrSinkDown = errors.New("notification sink unavailable")

// RecordingSink captures notifications in memory.
type RecordingSink struct {
	mu   sync.Mutex
	Sent []models.Notification
	Fail bool
}

// Notify records n, or fails when Fail is set.
func (s *RecordingSink) Notify(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrSinkDown
	}
	s.Sent = append(s.Sent, n)
	return nil
}

// For returns the notifications sent to recipient.
func (s *RecordingSink) For(recipient string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.Sent {
		if n.RecipientUserID == recipient {
			out = append(out, n)
		}
	}
	return out
}
