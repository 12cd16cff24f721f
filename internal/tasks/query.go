package tasks

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
)

// DefaultHistoryLimit caps History when no limit is given
const DefaultHistoryLimit = 50

// ListFilter narrows List; zero values match everything
type ListFilter struct {
	Status    models.TaskStatus
	ProjectID string
	Query     string // case-insensitive match on title or description
}

// List returns the tasks user can see: their own plus those in their
// projects, highest priority first and oldest first within a priority.
func (s *Service) List(ctx context.Context, user string, f ListFilter) ([]models.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.InvalidArgument("invalid status %q", f.Status)
	}

	tx := s.db.WithContext(ctx)
	q, err := visible(tx, user)
	if err != nil {
		return nil, err
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var rows []models.Task
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list tasks")
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Priority.Rank() > rows[j].Priority.Rank()
	})
	for i := range rows {
		if err := materialize(tx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Ready returns the open visible tasks whose dependencies are all completed
func (s *Service) Ready(ctx context.Context, user string) ([]models.Task, error) {
	all, err := s.List(ctx, user, ListFilter{})
	if err != nil {
		return nil, err
	}

	var depIDs []string
	for _, t := range all {
		depIDs = append(depIDs, t.DependencyIDs...)
	}
	deps, err := db.FindTasks(s.db.WithContext(ctx), depIDs)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load dependency tasks")
	}

	ready := []models.Task{}
	for _, t := range all {
		if !t.IsOpen() {
			continue
		}
		blocked := false
		for _, id := range t.DependencyIDs {
			if dep, ok := deps[id]; ok && !dep.IsResolved() {
				blocked = true
				break
			}
		}
		if !blocked {
			ready = append(ready, t)
		}
	}
	return ready, nil
}

// History returns the change log of a task, newest first
func (s *Service) History(ctx context.Context, taskID, user string, limit int) ([]models.TaskHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	tx := s.db.WithContext(ctx)
	task, err := loadTask(tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := CanView(tx, task, user); err != nil {
		return nil, err
	}

	rows := []models.TaskHistory{}
	if err := tx.Where("task_id = ?", taskID).
		Order("changed_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to load history of task %s", taskID)
	}
	return rows, nil
}

func visible(tx *gorm.DB, user string) (*gorm.DB, error) {
	projectIDs, err := db.MemberProjectIDs(tx, user)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load project memberships")
	}
	q := tx.Model(&models.Task{})
	if len(projectIDs) == 0 {
		return q.Where("user_id = ?", user), nil
	}
	return q.Where("(user_id = ? OR project_id IN ?)", user, projectIDs), nil
}
