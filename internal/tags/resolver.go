// Package tags resolves tag names against the global tag namespace and
// attaches them to tasks under the per-task cap.
package tags

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/models"
)

// Policy decides what happens to tag names that have no Tag row yet
type Policy int

const (
	// PolicyStrict rejects unknown tag names
	PolicyStrict Policy = iota
	// PolicyAutoCreate inserts unknown tag names as new global tags
	PolicyAutoCreate
)

// Attach appends the named tags to task inside tx.
//
// Names are trimmed; empty names and names already on the task are skipped.
// Attaching past models.MaxTagsPerTask fails with InvalidArgument. The
// task's Tags slice is extended with every tag that gets linked.
func Attach(tx *gorm.DB, task *models.Task, names []string, policy Policy) error {
	pending := make([]string, 0, len(names))
	seen := make(map[string]bool, len(task.Tags)+len(names))
	for _, tag := range task.Tags {
		seen[tag.Name] = true
	}
	for _, raw := range names {
		name := models.NormalizeTagName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		pending = append(pending, name)
	}
	if len(pending) == 0 {
		return nil
	}

	existing, err := lookup(tx, pending)
	if err != nil {
		return err
	}

	if policy == PolicyStrict {
		var missing []string
		for _, name := range pending {
			if _, ok := existing[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return apperr.InvalidArgument("tags not found: %s", strings.Join(missing, ", "))
		}
	}

	for _, name := range pending {
		if len(task.Tags) >= models.MaxTagsPerTask {
			return apperr.InvalidArgument("each task can have a maximum of %d unique tags", models.MaxTagsPerTask)
		}

		tag, ok := existing[name]
		if !ok {
			tag = &models.Tag{Name: name}
			if err := tx.Create(tag).Error; err != nil {
				return apperr.FromDB(err, "failed to create tag %q", name)
			}
		}

		link := &models.TaskTagLink{TaskID: task.ID, TagID: tag.ID}
		if err := tx.Create(link).Error; err != nil {
			return apperr.FromDB(err, "failed to link tag %q to task %s", name, task.ID)
		}
		task.Tags = append(task.Tags, *tag)
	}
	return nil
}

// Detach removes the named tag from task inside tx. It fails with NotFound
// when the tag is not attached.
func Detach(tx *gorm.DB, task *models.Task, name string) error {
	name = models.NormalizeTagName(name)
	idx := -1
	for i, tag := range task.Tags {
		if tag.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFound("tag %q is not attached to task %s", name, task.ID)
	}

	tag := task.Tags[idx]
	if err := tx.Where("task_id = ? AND tag_id = ?", task.ID, tag.ID).Delete(&models.TaskTagLink{}).Error; err != nil {
		return apperr.FromDB(err, "failed to unlink tag %q from task %s", name, task.ID)
	}
	task.Tags = append(task.Tags[:idx], task.Tags[idx+1:]...)
	return nil
}

func lookup(tx *gorm.DB, names []string) (map[string]*models.Tag, error) {
	var rows []models.Tag
	if err := tx.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to look up tags")
	}
	found := make(map[string]*models.Tag, len(rows))
	for i := range rows {
		found[rows[i].Name] = &rows[i]
	}
	return found, nil
}

// Catalog exposes the global tag namespace
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a Catalog over database
func NewCatalog(database *gorm.DB) *Catalog {
	return &Catalog{db: database}
}

// List returns every tag ordered by name
func (c *Catalog) List(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list tags")
	}
	return rows, nil
}

// Create adds a tag to the namespace. It fails with Conflict when the name exists.
func (c *Catalog) Create(ctx context.Context, name string) (*models.Tag, error) {
	name = models.NormalizeTagName(name)
	if name == "" {
		return nil, apperr.InvalidArgument("tag name is required")
	}

	tag := &models.Tag{Name: name}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Tag
		err := tx.Where("name = ?", name).Take(&existing).Error
		if err == nil {
			return apperr.Conflict("tag %q already exists", name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err, "failed to look up tag %q", name)
		}
		return apperr.FromDB(tx.Create(tag).Error, "failed to create tag %q", name)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}
