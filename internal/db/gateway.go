package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"devtask/internal/models"
)

// FindTask loads a task row by ID. It returns (nil, nil) when the task does not exist.
func FindTask(tx *gorm.DB, id string) (*models.Task, error) {
	var task models.Task
	err := tx.Where("id = ?", id).Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindTasks loads every task whose ID is in ids, keyed by ID
func FindTasks(tx *gorm.DB, ids []string) (map[string]*models.Task, error) {
	found := make(map[string]*models.Task, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []models.Task
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		found[rows[i].ID] = &rows[i]
	}
	return found, nil
}

// FindUser loads a user by ID. It returns (nil, nil) when the user does not exist.
func FindUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Where("user_id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail loads a user by normalized email. It returns (nil, nil) when absent.
func FindUserByEmail(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", models.NormalizeEmail(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProject loads a project by ID. It returns (nil, nil) when the project does not exist.
func FindProject(tx *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := tx.Where("id = ?", id).Take(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindMembership loads the membership row for (projectID, userID), or nil.
func FindMembership(tx *gorm.DB, projectID, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// IsProjectMember reports whether userID belongs to projectID
func IsProjectMember(tx *gorm.DB, projectID, userID string) (bool, error) {
	var count int64
	err := tx.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberProjectIDs returns the IDs of every project userID belongs to
func MemberProjectIDs(tx *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.ProjectMember{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &ids).Error
	return ids, err
}

// TaskTags returns the tags attached to a task in attachment order
func TaskTags(tx *gorm.DB, taskID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := tx.Model(&models.Tag{}).
		Joins("JOIN task_tag_links ON task_tag_links.tag_id = tags.id").
		Where("task_tag_links.task_id = ?", taskID).
		Order("task_tag_links.created_at ASC, tags.id ASC").
		Find(&tags).Error
	return tags, err
}

// DeleteTaskCascade removes a task together with its tag links, dependency
// edges in both directions, assignments, comments and history.
func DeleteTaskCascade(tx *gorm.DB, taskID string) error {
	steps := []struct {
		what  string
		query *gorm.DB
		model interface{}
	}{
		{"tag links", tx.Where("task_id = ?", taskID), &models.TaskTagLink{}},
		{"dependencies", tx.Where("task_id = ? OR depends_on_id = ?", taskID, taskID), &models.TaskDependency{}},
		{"assignments", tx.Where("task_id = ?", taskID), &models.TaskAssignment{}},
		{"comments", tx.Where("task_id = ?", taskID), &models.TaskComment{}},
		{"history", tx.Where("task_id = ?", taskID), &models.TaskHistory{}},
	}
	for _, step := range steps {
		if err := step.query.Delete(step.model).Error; err != nil {
			return fmt.Errorf("failed to delete %s of task %s: %w", step.what, taskID, err)
		}
	}
	if err := tx.Where("id = ?", taskID).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	return nil
}

// DeleteCommentTree removes a comment and every reply beneath it.
// It returns the number of comments removed.
func DeleteCommentTree(tx *gorm.DB, commentID string) (int, error) {
	ids := []string{commentID}
	frontier := []string{commentID}
	for len(frontier) > 0 {
		var children []string
		if err := tx.Model(&models.TaskComment{}).
			Where("parent_comment_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return 0, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.TaskComment{}).Error; err != nil {
		return 0, err
	}
	return len(ids), nil
}
