// Package comments stores threaded task comments and relays them live.
//
// Replies reference their parent by ID only. The thread is rebuilt on read
// by grouping rows on parent_comment_id.
package comments

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/broker"
	"devtask/internal/db"
	"devtask/internal/models"
	"devtask/internal/notify"
	"devtask/internal/tasks"
)

// Node is one comment with its direct replies
type Node struct {
	models.TaskComment
	Replies []*Node `json:"replies"`
}

// Service implements comment operations
type Service struct {
	db     *gorm.DB
	sink   notify.Sink
	broker *broker.Broker
	log    *logrus.Entry
	Now    func() time.Time
}

// New creates a comment Service. sink and b may be nil.
func New(database *gorm.DB, sink notify.Sink, b *broker.Broker, log *logrus.Entry) *Service {
	return &Service{db: database, sink: sink, broker: b, log: log, Now: time.Now}
}

// Add posts a top-level comment on taskID
func (s *Service) Add(ctx context.Context, taskID, content, author string) (*models.TaskComment, error) {
	return s.post(ctx, taskID, nil, content, author)
}

// Reply answers parentID; the reply lands on the parent's task
func (s *Service) Reply(ctx context.Context, parentID, content, author string) (*models.TaskComment, error) {
	var parent models.TaskComment
	if err := s.db.WithContext(ctx).Where("id = ?", parentID).Take(&parent).Error; err != nil {
		return nil, apperr.FromDB(err, "comment %s not found", parentID)
	}
	return s.post(ctx, parent.TaskID, &parent, content, author)
}

func (s *Service) post(ctx context.Context, taskID string, parent *models.TaskComment, content, author string) (*models.TaskComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidArgument("comment content is required")
	}

	var (
		comment    *models.TaskComment
		task       *models.Task
		authorName = author
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = db.FindTask(tx, taskID)
		if err != nil {
			return apperr.FromDB(err, "failed to load task %s", taskID)
		}
		if task == nil {
			return apperr.NotFound("task %s not found", taskID)
		}
		if err := tasks.CanView(tx, task, author); err != nil {
			return err
		}
		if u, err := db.FindUser(tx, author); err == nil && u != nil {
			authorName = u.DisplayName()
		}

		comment = &models.TaskComment{
			TaskID:    taskID,
			UserID:    author,
			Content:   content,
			CreatedAt: s.Now(),
		}
		if parent != nil {
			comment.ParentCommentID = &parent.ID
		}
		return apperr.FromDB(tx.Create(comment).Error, "failed to store comment")
	})
	if err != nil {
		return nil, err
	}

	switch {
	case parent != nil && parent.UserID != author:
		msg := fmt.Sprintf("%s replied to your comment on '%s'", authorName, task.Title)
		notify.Send(ctx, s.sink, s.logger(), notify.TaskNotification(parent.UserID, msg, models.NotificationCommentReply, task.ID))
	case parent == nil && task.UserID != author:
		msg := fmt.Sprintf("%s commented on your task '%s'", authorName, task.Title)
		notify.Send(ctx, s.sink, s.logger(), notify.TaskNotification(task.UserID, msg, models.NotificationComment, task.ID))
	}
	s.publish(broker.EventCommentAdded, *comment)
	return comment, nil
}

// List returns the comment thread of taskID as a forest ordered by creation time
func (s *Service) List(ctx context.Context, taskID, user string) ([]*Node, error) {
	tx := s.db.WithContext(ctx)
	task, err := db.FindTask(tx, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load task %s", taskID)
	}
	if task == nil {
		return nil, apperr.NotFound("task %s not found", taskID)
	}
	if err := tasks.CanView(tx, task, user); err != nil {
		return nil, err
	}

	var rows []models.TaskComment
	if err := tx.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list comments of task %s", taskID)
	}
	return BuildTree(rows), nil
}

// Delete removes a comment and all of its replies; author only
func (s *Service) Delete(ctx context.Context, commentID, user string) (int, error) {
	var (
		comment models.TaskComment
		removed int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", commentID).Take(&comment).Error; err != nil {
			return apperr.FromDB(err, "comment %s not found", commentID)
		}
		if comment.UserID != user {
			return apperr.Forbidden("only the author can delete comment %s", commentID)
		}
		var err error
		removed, err = db.DeleteCommentTree(tx, commentID)
		if err != nil {
			return apperr.Internal(err, "failed to delete comment %s", commentID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publish(broker.EventCommentDeleted, comment)
	return removed, nil
}

func (s *Service) publish(kind string, c models.TaskComment) {
	if s.broker == nil {
		return
	}
	n := s.broker.Publish(c.TaskID, broker.Event{Type: kind, TaskID: c.TaskID, Comment: c, At: s.Now()})
	s.logger().WithFields(logrus.Fields{"task": c.TaskID, "event": kind, "listeners": n}).Debug("comment event published")
}

// BuildTree groups rows by parent into a reply forest. Rows whose parent is
// missing are treated as roots. Siblings keep the order of rows.
func BuildTree(rows []models.TaskComment) []*Node {
	nodes := make(map[string]*Node, len(rows))
	for i := range rows {
		nodes[rows[i].ID] = &Node{TaskComment: rows[i], Replies: []*Node{}}
	}

	roots := []*Node{}
	for i := range rows {
		node := nodes[rows[i].ID]
		if rows[i].IsReply() {
			if parent, ok := nodes[*rows[i].ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.Before(roots[j].CreatedAt)
	})
	return roots
}

func (s *Service) logger() *logrus.Entry {
	if s.log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.log
}
