// Package graph maintains the directed dependency edges between tasks.
//
// Only direct self-loops are rejected. Longer cycles (A→B→A) are accepted.
package graph

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
)

// Manager reads and replaces dependency edges
type Manager struct {
	db  *gorm.DB
	Now func() time.Time
}

// New creates a Manager over database
func New(database *gorm.DB) *Manager {
	return &Manager{db: database, Now: time.Now}
}

// Set replaces the full outgoing edge set of taskID in one transaction
func (m *Manager) Set(ctx context.Context, taskID string, dependencyIDs []string, actor string) ([]string, error) {
	var result []string
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := db.FindTask(tx, taskID)
		if err != nil {
			return apperr.FromDB(err, "failed to load task %s", taskID)
		}
		if task == nil {
			return apperr.NotFound("task %s not found", taskID)
		}
		if task.UserID != actor {
			return apperr.Forbidden("only the task owner can change dependencies of %s", taskID)
		}

		if err := SetTx(tx, task, dependencyIDs, actor); err != nil {
			return err
		}
		task.Touch(m.Now())
		if err := tx.Model(task).UpdateColumn("updated_at", task.UpdatedAt).Error; err != nil {
			return apperr.FromDB(err, "failed to touch task %s", taskID)
		}
		result = task.DependencyIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetTx validates dependencyIDs and swaps in the new edge set for task inside tx.
// Every target must exist and belong to actor. task.DependencyIDs is set to the
// stored set; the caller refreshes the task's timestamp.
func SetTx(tx *gorm.DB, task *models.Task, dependencyIDs []string, actor string) error {
	ids := dedupe(dependencyIDs)
	for _, id := range ids {
		if id == task.ID {
			return apperr.InvalidArgument("task %s cannot depend on itself", task.ID)
		}
	}

	targets, err := db.FindTasks(tx, ids)
	if err != nil {
		return apperr.FromDB(err, "failed to load dependency tasks")
	}
	var missing []string
	for _, id := range ids {
		if _, ok := targets[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperr.NotFound("dependency tasks not found: %s", strings.Join(missing, ", "))
	}
	for _, id := range ids {
		if targets[id].UserID != actor {
			return apperr.Forbidden("cross-user linking not allowed: task %s belongs to another user", id)
		}
	}

	if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskDependency{}).Error; err != nil {
		return apperr.FromDB(err, "failed to clear dependencies of task %s", task.ID)
	}
	if len(ids) > 0 {
		edges := make([]models.TaskDependency, 0, len(ids))
		for _, id := range ids {
			edges = append(edges, models.TaskDependency{TaskID: task.ID, DependsOnID: id})
		}
		if err := tx.Create(&edges).Error; err != nil {
			return apperr.FromDB(err, "failed to store dependencies of task %s", task.ID)
		}
	}
	task.DependencyIDs = ids
	return nil
}

// DependenciesOf returns the IDs of the tasks taskID depends on
func (m *Manager) DependenciesOf(ctx context.Context, taskID string) ([]string, error) {
	tx := m.db.WithContext(ctx)
	if err := mustExist(tx, taskID); err != nil {
		return nil, err
	}
	return Outgoing(tx, taskID)
}

// DependentsOf returns the IDs of the tasks that depend on taskID
func (m *Manager) DependentsOf(ctx context.Context, taskID string) ([]string, error) {
	tx := m.db.WithContext(ctx)
	if err := mustExist(tx, taskID); err != nil {
		return nil, err
	}
	return Incoming(tx, taskID)
}

func mustExist(tx *gorm.DB, taskID string) error {
	task, err := db.FindTask(tx, taskID)
	if err != nil {
		return apperr.FromDB(err, "failed to load task %s", taskID)
	}
	if task == nil {
		return apperr.NotFound("task %s not found", taskID)
	}
	return nil
}

// Outgoing returns the sorted IDs taskID depends on, inside tx
func Outgoing(tx *gorm.DB, taskID string) ([]string, error) {
	return neighbours(tx, taskID, "task_id", "depends_on_id")
}

// Incoming returns the sorted IDs of tasks depending on taskID, inside tx
func Incoming(tx *gorm.DB, taskID string) ([]string, error) {
	return neighbours(tx, taskID, "depends_on_id", "task_id")
}

func neighbours(tx *gorm.DB, taskID, from, to string) ([]string, error) {
	ids := []string{}
	if err := tx.Model(&models.TaskDependency{}).
		Where(from+" = ?", taskID).
		Pluck(to, &ids).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to query dependencies of task %s", taskID)
	}
	sort.Strings(ids)
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
