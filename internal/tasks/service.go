// Package tasks owns the task lifecycle: creation, reads scoped to owners and
// project members, partial updates, tag removal and cascading deletion.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/graph"
	"devtask/internal/models"
	"devtask/internal/tags"
)

// Service implements the task lifecycle over a gorm database
type Service struct {
	db  *gorm.DB
	log *logrus.Entry
	Now func() time.Time
}

// New creates a task Service
func New(database *gorm.DB, log *logrus.Entry) *Service {
	return &Service{db: database, log: log, Now: time.Now}
}

// CreateInput holds the fields of a new task. Nil pointers take defaults.
type CreateInput struct {
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.Priority
	DueDate       *time.Time
	EstimatedTime *float64
	ActualTime    *float64
	Tags          []string
	DependencyIDs []string
	ProjectID     *string
}

// UpdateInput holds a partial update; only non-nil fields are applied.
// Tags are appended to the existing set, DependencyIDs replace it.
type UpdateInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.Priority
	DueDate       *time.Time
	ClearDueDate  bool
	EstimatedTime *float64
	ActualTime    *float64
	Tags          []string
	DependencyIDs *[]string
	ProjectID     *string
}

// Create validates and stores a new task owned by owner
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidArgument("title is required")
	}
	if in.Status == "" {
		in.Status = models.StatusNotStarted
	}
	if !in.Status.Valid() {
		return nil, apperr.InvalidArgument("invalid status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.InvalidArgument("invalid priority %q (must be low/medium/high)", in.Priority)
	}
	if err := validateHours("estimated_time", in.EstimatedTime); err != nil {
		return nil, err
	}
	if err := validateHours("actual_time", in.ActualTime); err != nil {
		return nil, err
	}

	now := s.Now()
	task := &models.Task{
		Title:         title,
		Description:   in.Description,
		Priority:      in.Priority,
		DueDate:       in.DueDate,
		EstimatedTime: hoursOrDefault(in.EstimatedTime),
		ActualTime:    hoursOrDefault(in.ActualTime),
		UserID:        owner,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	task.SetStatus(in.Status)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, owner); err != nil {
			return err
		}
		if in.ProjectID != nil && *in.ProjectID != "" {
			if err := requireProjectMember(tx, *in.ProjectID, owner); err != nil {
				return err
			}
			task.ProjectID = in.ProjectID
		}

		if err := tx.Create(task).Error; err != nil {
			return apperr.FromDB(err, "failed to create task")
		}
		if err := tags.Attach(tx, task, in.Tags, tags.PolicyStrict); err != nil {
			return err
		}
		if err := graph.SetTx(tx, task, in.DependencyIDs, owner); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger().WithFields(logrus.Fields{"task": task.ID, "owner": owner}).Debug("task created")
	return task, nil
}

// Get returns a materialized task visible to user
func (s *Service) Get(ctx context.Context, taskID, user string) (*models.Task, error) {
	tx := s.db.WithContext(ctx)
	task, err := loadTask(tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := CanView(tx, task, user); err != nil {
		return nil, err
	}
	if err := materialize(tx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a partial update; only the owner may update a task
func (s *Service) Update(ctx context.Context, taskID string, in UpdateInput, user string) (*models.Task, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.InvalidArgument("invalid status %q", *in.Status)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperr.InvalidArgument("invalid priority %q (must be low/medium/high)", *in.Priority)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.InvalidArgument("title cannot be empty")
	}
	if err := validateHours("estimated_time", in.EstimatedTime); err != nil {
		return nil, err
	}
	if err := validateHours("actual_time", in.ActualTime); err != nil {
		return nil, err
	}

	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != user {
			return apperr.Forbidden("only the task owner can update task %s", taskID)
		}
		if err := materialize(tx, task); err != nil {
			return err
		}

		changes := newChangeLog(task.ID, user)
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			changes.add("title", task.Title, title)
			task.Title = title
		}
		if in.Description != nil {
			changes.add("description", task.Description, *in.Description)
			task.Description = *in.Description
		}
		if in.Status != nil {
			changes.add("status", string(task.Status), string(*in.Status))
			task.SetStatus(*in.Status)
		}
		if in.Priority != nil {
			changes.add("priority", string(task.Priority), string(*in.Priority))
			task.Priority = *in.Priority
		}
		if in.ClearDueDate {
			changes.add("due_date", formatDue(task.DueDate), "")
			task.DueDate = nil
		} else if in.DueDate != nil {
			changes.add("due_date", formatDue(task.DueDate), formatDue(in.DueDate))
			task.DueDate = in.DueDate
		}
		if in.EstimatedTime != nil {
			changes.add("estimated_time", models.HoursString(task.EstimatedTime), models.HoursString(in.EstimatedTime))
			task.EstimatedTime = in.EstimatedTime
		}
		if in.ActualTime != nil {
			changes.add("actual_time", models.HoursString(task.ActualTime), models.HoursString(in.ActualTime))
			task.ActualTime = in.ActualTime
		}
		if in.ProjectID != nil {
			old := derefString(task.ProjectID)
			if *in.ProjectID == "" {
				task.ProjectID = nil
			} else {
				if err := requireProjectMember(tx, *in.ProjectID, user); err != nil {
					return err
				}
				task.ProjectID = in.ProjectID
			}
			changes.add("project_id", old, *in.ProjectID)
		}

		if in.Tags != nil {
			before := strings.Join(task.TagNames(), ",")
			if err := tags.Attach(tx, task, in.Tags, tags.PolicyAutoCreate); err != nil {
				return err
			}
			changes.add("tags", before, strings.Join(task.TagNames(), ","))
		}
		if in.DependencyIDs != nil {
			before := strings.Join(task.DependencyIDs, ",")
			if err := graph.SetTx(tx, task, *in.DependencyIDs, user); err != nil {
				return err
			}
			changes.add("dependencies", before, strings.Join(task.DependencyIDs, ","))
		}

		task.Touch(s.Now())
		if err := tx.Save(task).Error; err != nil {
			return apperr.FromDB(err, "failed to update task %s", taskID)
		}
		return changes.flush(tx)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and everything hanging off it; owner only
func (s *Service) Delete(ctx context.Context, taskID, user string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != user {
			return apperr.Forbidden("only the task owner can delete task %s", taskID)
		}
		if err := db.DeleteTaskCascade(tx, task.ID); err != nil {
			return apperr.Internal(err, "failed to delete task %s", taskID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger().WithFields(logrus.Fields{"task": taskID, "user": user}).Debug("task deleted")
	return nil
}

// RemoveTag detaches tagName from a task; owner only
func (s *Service) RemoveTag(ctx context.Context, taskID, tagName, user string) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != user {
			return apperr.Forbidden("only the task owner can remove tags from task %s", taskID)
		}
		if err := materialize(tx, task); err != nil {
			return err
		}
		if err := tags.Detach(tx, task, tagName); err != nil {
			return err
		}
		task.Touch(s.Now())
		if err := tx.Model(task).UpdateColumn("updated_at", task.UpdatedAt).Error; err != nil {
			return apperr.FromDB(err, "failed to touch task %s", taskID)
		}
		return models.RecordChange(tx, task.ID, "tag_removed", models.NormalizeTagName(tagName), "", user)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) logger() *logrus.Entry {
	if s.log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.log
}

func loadTask(tx *gorm.DB, taskID string) (*models.Task, error) {
	task, err := db.FindTask(tx, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load task %s", taskID)
	}
	if task == nil {
		return nil, apperr.NotFound("task %s not found", taskID)
	}
	return task, nil
}

// CanView allows the task owner and, for project tasks, any project member
func CanView(tx *gorm.DB, task *models.Task, user string) error {
	if task.UserID == user {
		return nil
	}
	if task.InProject() {
		member, err := db.IsProjectMember(tx, *task.ProjectID, user)
		if err != nil {
			return apperr.FromDB(err, "failed to check project membership")
		}
		if member {
			return nil
		}
	}
	return apperr.Forbidden("not authorized to view task %s", task.ID)
}

func materialize(tx *gorm.DB, task *models.Task) error {
	tagRows, err := db.TaskTags(tx, task.ID)
	if err != nil {
		return apperr.FromDB(err, "failed to load tags of task %s", task.ID)
	}
	task.Tags = tagRows
	deps, err := graph.Outgoing(tx, task.ID)
	if err != nil {
		return err
	}
	task.DependencyIDs = deps
	return nil
}

func requireUser(tx *gorm.DB, userID string) error {
	user, err := db.FindUser(tx, userID)
	if err != nil {
		return apperr.FromDB(err, "failed to load user %s", userID)
	}
	if user == nil {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}

func requireProjectMember(tx *gorm.DB, projectID, userID string) error {
	project, err := db.FindProject(tx, projectID)
	if err != nil {
		return apperr.FromDB(err, "failed to load project %s", projectID)
	}
	if project == nil {
		return apperr.NotFound("project %s not found", projectID)
	}
	member, err := db.IsProjectMember(tx, projectID, userID)
	if err != nil {
		return apperr.FromDB(err, "failed to check project membership")
	}
	if !member {
		return apperr.Forbidden("not a member of project %s", projectID)
	}
	return nil
}

func validateHours(field string, h *float64) error {
	if h != nil && *h < 0 {
		return apperr.InvalidArgument("%s cannot be negative", field)
	}
	return nil
}

func hoursOrDefault(h *float64) *float64 {
	if h != nil {
		v := *h
		return &v
	}
	v := models.DefaultHours
	return &v
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(models.DateTimeFormat)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// changeLog buffers history entries so they are written after the task row
type changeLog struct {
	taskID  string
	user    string
	entries [][3]string
}

func newChangeLog(taskID, user string) *changeLog {
	return &changeLog{taskID: taskID, user: user}
}

func (c *changeLog) add(field, oldValue, newValue string) {
	c.entries = append(c.entries, [3]string{field, oldValue, newValue})
}

func (c *changeLog) flush(tx *gorm.DB) error {
	for _, e := range c.entries {
		if err := models.RecordChange(tx, c.taskID, e[0], e[1], e[2], c.user); err != nil {
			return fmt.Errorf("failed to record %s change: %w", e[0], err)
		}
	}
	return nil
}
