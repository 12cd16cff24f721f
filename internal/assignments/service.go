// Package assignments manages the assignee and watcher roster of each task.
package assignments

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
	"devtask/internal/notify"
)

// Service assigns users to tasks and notifies them
type Service struct {
	db   *gorm.DB
	sink notify.Sink
	log  *logrus.Entry
}

// New creates an assignment Service. sink may be nil to disable notifications.
func New(database *gorm.DB, sink notify.Sink, log *logrus.Entry) *Service {
	return &Service{db: database, sink: sink, log: log}
}

// AssignInput names the task, the target user and the requested role
type AssignInput struct {
	TaskID    string
	UserID    string
	IsWatcher bool
}

// Assign puts a user on a task as an assignee or a watcher.
//
// An existing assignee row for the same role is a Conflict, an existing
// watcher row is returned as is, and a row held in the other role is flipped
// in place. Only newly created rows notify the target.
func (s *Service) Assign(ctx context.Context, in AssignInput, actor string) (*models.TaskAssignment, error) {
	var (
		assignment *models.TaskAssignment
		task       *models.Task
		actorName  string
		created    bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, actorName, err = s.prepare(tx, in.TaskID, in.UserID, actor)
		if err != nil {
			return err
		}

		existing, err := findForUser(tx, in.TaskID, in.UserID, in.IsWatcher)
		if err != nil {
			return err
		}
		if existing != nil {
			switch {
			case existing.IsWatcher == in.IsWatcher && !in.IsWatcher:
				return apperr.Conflict("user %s is already assigned to task %s", in.UserID, in.TaskID)
			case existing.IsWatcher != in.IsWatcher:
				existing.IsWatcher = in.IsWatcher
				if err := tx.Model(existing).UpdateColumn("is_watcher", in.IsWatcher).Error; err != nil {
					return apperr.FromDB(err, "user %s already holds that role on task %s", in.UserID, in.TaskID)
				}
			}
			assignment = existing
			return nil
		}

		assignment = &models.TaskAssignment{TaskID: in.TaskID, UserID: in.UserID, IsWatcher: in.IsWatcher}
		if err := tx.Create(assignment).Error; err != nil {
			return apperr.FromDB(err, "user %s is already assigned to task %s", in.UserID, in.TaskID)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created && in.UserID != actor {
		var msg string
		if in.IsWatcher {
			msg = fmt.Sprintf("%s added you as a watcher to the task: '%s'", actorName, task.Title)
		} else {
			msg = fmt.Sprintf("%s assigned you to the task: '%s'", actorName, task.Title)
		}
		notify.Send(ctx, s.sink, s.logger(), notify.TaskNotification(in.UserID, msg, models.NotificationTaskAssignment, task.ID))
	}
	s.logger().WithFields(logrus.Fields{
		"task": in.TaskID, "user": in.UserID, "role": assignment.Role(), "created": created,
	}).Debug("assignment stored")
	return assignment, nil
}

// Watch adds userID as a watcher of taskID. It fails with Conflict when the
// user already watches the task.
func (s *Service) Watch(ctx context.Context, taskID, userID, actor string) (*models.TaskAssignment, error) {
	var (
		assignment *models.TaskAssignment
		task       *models.Task
		actorName  string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, actorName, err = s.prepare(tx, taskID, userID, actor)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ? AND user_id = ? AND is_watcher = ?", taskID, userID, true).
			Count(&count).Error; err != nil {
			return apperr.FromDB(err, "failed to look up watchers of task %s", taskID)
		}
		if count > 0 {
			return apperr.Conflict("user %s is already a watcher for task %s", userID, taskID)
		}

		assignment = &models.TaskAssignment{TaskID: taskID, UserID: userID, IsWatcher: true}
		return apperr.FromDB(tx.Create(assignment).Error, "user %s is already a watcher for task %s", userID, taskID)
	})
	if err != nil {
		return nil, err
	}

	if userID != actor {
		msg := fmt.Sprintf("%s added you as a watcher to the task: '%s'", actorName, task.Title)
		notify.Send(ctx, s.sink, s.logger(), notify.TaskNotification(userID, msg, models.NotificationTaskAssignment, task.ID))
	}
	return assignment, nil
}

// List returns every assignee and watcher row of taskID.
// Project tasks are visible to project members, standalone tasks to their owner.
func (s *Service) List(ctx context.Context, taskID, user string) ([]models.TaskAssignment, error) {
	tx := s.db.WithContext(ctx)
	task, err := loadTask(tx, taskID)
	if err != nil {
		return nil, err
	}

	if task.InProject() {
		project, err := db.FindProject(tx, *task.ProjectID)
		if err != nil {
			return nil, apperr.FromDB(err, "failed to load project %s", *task.ProjectID)
		}
		if project == nil {
			return nil, apperr.NotFound("project %s not found", *task.ProjectID)
		}
		member, err := db.IsProjectMember(tx, project.ID, user)
		if err != nil {
			return nil, apperr.FromDB(err, "failed to check project membership")
		}
		if !member {
			return nil, apperr.Forbidden("not a member of project %s", project.ID)
		}
	} else if task.UserID != user {
		return nil, apperr.Forbidden("not authorized to view assignments of task %s", taskID)
	}

	rows := []models.TaskAssignment{}
	if err := tx.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list assignments of task %s", taskID)
	}
	return rows, nil
}

// Remove deletes an assignment; task owner or project owner only
func (s *Service) Remove(ctx context.Context, assignmentID, actor string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.TaskAssignment
		if err := tx.Where("id = ?", assignmentID).Take(&assignment).Error; err != nil {
			return apperr.FromDB(err, "assignment %s not found", assignmentID)
		}
		task, err := loadTask(tx, assignment.TaskID)
		if err != nil {
			return err
		}
		if err := CanModify(tx, task, actor); err != nil {
			return err
		}
		if err := tx.Delete(&assignment).Error; err != nil {
			return apperr.FromDB(err, "failed to delete assignment %s", assignmentID)
		}
		return nil
	})
}

// prepare loads the task, authorizes actor and checks the target user exists.
// It returns the task and the actor's display name for notifications.
func (s *Service) prepare(tx *gorm.DB, taskID, userID, actor string) (*models.Task, string, error) {
	task, err := loadTask(tx, taskID)
	if err != nil {
		return nil, "", err
	}
	if err := CanModify(tx, task, actor); err != nil {
		return nil, "", err
	}

	target, err := db.FindUser(tx, userID)
	if err != nil {
		return nil, "", apperr.FromDB(err, "failed to load user %s", userID)
	}
	if target == nil {
		return nil, "", apperr.NotFound("user %s not found", userID)
	}

	actorName := actor
	if u, err := db.FindUser(tx, actor); err == nil && u != nil {
		actorName = u.DisplayName()
	}
	return task, actorName, nil
}

// CanModify allows the task owner and, for project tasks, the project owner
func CanModify(tx *gorm.DB, task *models.Task, actor string) error {
	if task.UserID == actor {
		return nil
	}
	if task.InProject() {
		project, err := db.FindProject(tx, *task.ProjectID)
		if err != nil {
			return apperr.FromDB(err, "failed to load project %s", *task.ProjectID)
		}
		if project != nil && project.OwnerID == actor {
			return nil
		}
	}
	return apperr.Forbidden("not authorized to modify assignments of task %s", task.ID)
}

// findForUser returns the user's row on the task, preferring the one whose
// role matches wantWatcher, or nil when the user holds no row.
func findForUser(tx *gorm.DB, taskID, userID string, wantWatcher bool) (*models.TaskAssignment, error) {
	var rows []models.TaskAssignment
	if err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to look up assignments of task %s", taskID)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for i := range rows {
		if rows[i].IsWatcher == wantWatcher {
			return &rows[i], nil
		}
	}
	return &rows[0], nil
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

func (s *Service) logger() *logrus.Entry {
	if s.log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.log
}
