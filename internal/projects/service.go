// Package projects manages projects and their member rosters.
package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
	"devtask/internal/notify"
)

// Service implements project and membership operations
type Service struct {
	db   *gorm.DB
	sink notify.Sink
	log  *logrus.Entry
}

// New creates a project Service. sink may be nil to disable invite notifications.
func New(database *gorm.DB, sink notify.Sink, log *logrus.Entry) *Service {
	return &Service{db: database, sink: sink, log: log}
}

// Create stores a project owned by owner and adds owner as its first member
func (s *Service) Create(ctx context.Context, owner, title, description string) (*models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.InvalidArgument("project title is required")
	}

	project := &models.Project{Title: title, Description: description, OwnerID: owner}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := db.FindUser(tx, owner)
		if err != nil {
			return apperr.FromDB(err, "failed to load user %s", owner)
		}
		if user == nil {
			return apperr.NotFound("user %s not found", owner)
		}
		if err := tx.Create(project).Error; err != nil {
			return apperr.FromDB(err, "failed to create project")
		}
		member := &models.ProjectMember{ProjectID: project.ID, UserID: owner, Role: models.RoleOwner}
		return apperr.FromDB(tx.Create(member).Error, "failed to add owner to project %s", project.ID)
	})
	if err != nil {
		return nil, err
	}
	s.logger().WithFields(logrus.Fields{"project": project.ID, "owner": owner}).Debug("project created")
	return project, nil
}

// Get returns a project visible to user; members only
func (s *Service) Get(ctx context.Context, projectID, user string) (*models.Project, error) {
	tx := s.db.WithContext(ctx)
	project, err := loadProject(tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(tx, projectID, user); err != nil {
		return nil, err
	}
	return project, nil
}

// ListForUser returns every project user belongs to, oldest first
func (s *Service) ListForUser(ctx context.Context, user string) ([]models.Project, error) {
	tx := s.db.WithContext(ctx)
	rows := []models.Project{}
	err := tx.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", user).
		Order("projects.created_at ASC, projects.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "failed to list projects")
	}
	return rows, nil
}

// Delete removes a project and its memberships; its tasks become standalone
func (s *Service) Delete(ctx context.Context, projectID, user string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		if project.OwnerID != user {
			return apperr.Forbidden("only the owner can delete project %s", projectID)
		}
		if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).
			UpdateColumn("project_id", nil).Error; err != nil {
			return apperr.FromDB(err, "failed to detach tasks from project %s", projectID)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return apperr.FromDB(err, "failed to remove members of project %s", projectID)
		}
		return apperr.FromDB(tx.Delete(project).Error, "failed to delete project %s", projectID)
	})
}

// Invite adds invitee to the project as a member and notifies them; owner only
func (s *Service) Invite(ctx context.Context, projectID, invitee, actor string) (*models.ProjectMember, error) {
	var (
		member  *models.ProjectMember
		project *models.Project
		inviter = actor
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = s.ownedProject(tx, projectID, actor, "invite users to")
		if err != nil {
			return err
		}
		if invitee == actor {
			return apperr.InvalidArgument("owner cannot invite themselves")
		}

		user, err := db.FindUser(tx, invitee)
		if err != nil {
			return apperr.FromDB(err, "failed to load user %s", invitee)
		}
		if user == nil {
			return apperr.NotFound("invited user %s not found", invitee)
		}
		existing, err := db.FindMembership(tx, projectID, invitee)
		if err != nil {
			return apperr.FromDB(err, "failed to check project membership")
		}
		if existing != nil {
			return apperr.Conflict("user %s is already a member of project %s", invitee, projectID)
		}
		if u, err := db.FindUser(tx, actor); err == nil && u != nil {
			inviter = u.DisplayName()
		}

		member = &models.ProjectMember{ProjectID: projectID, UserID: invitee, Role: models.RoleMember}
		return apperr.FromDB(tx.Create(member).Error, "user %s is already a member of project %s", invitee, projectID)
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s invited you to the project: '%s'", inviter, project.Title)
	notify.Send(ctx, s.sink, s.logger(), notify.ProjectNotification(invitee, msg, models.NotificationProjectInvite, projectID))
	return member, nil
}

// Members lists the roster of a project; members only
func (s *Service) Members(ctx context.Context, projectID, user string) ([]models.ProjectMember, error) {
	tx := s.db.WithContext(ctx)
	if _, err := loadProject(tx, projectID); err != nil {
		return nil, err
	}
	if err := requireMember(tx, projectID, user); err != nil {
		return nil, err
	}
	rows := []models.ProjectMember{}
	if err := tx.Where("project_id = ?", projectID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list members of project %s", projectID)
	}
	return rows, nil
}

// UpdateRole changes a member's role; owner only
func (s *Service) UpdateRole(ctx context.Context, projectID, userID, role, actor string) (*models.ProjectMember, error) {
	if !models.ValidRole(role) {
		return nil, apperr.InvalidArgument("invalid role %q (must be owner/member)", role)
	}
	var member *models.ProjectMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedProject(tx, projectID, actor, "update roles in"); err != nil {
			return err
		}
		var err error
		member, err = loadMembership(tx, projectID, userID)
		if err != nil {
			return err
		}
		member.Role = role
		return apperr.FromDB(tx.Model(member).UpdateColumn("role", role).Error, "failed to update role of %s", userID)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember drops a user from the roster; owner only. The project owner stays.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID, actor string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.ownedProject(tx, projectID, actor, "remove members from")
		if err != nil {
			return err
		}
		if userID == project.OwnerID {
			return apperr.InvalidArgument("the project owner cannot be removed from project %s", projectID)
		}
		member, err := loadMembership(tx, projectID, userID)
		if err != nil {
			return err
		}
		return apperr.FromDB(tx.Delete(member).Error, "failed to remove %s from project %s", userID, projectID)
	})
}

func (s *Service) ownedProject(tx *gorm.DB, projectID, actor, action string) (*models.Project, error) {
	project, err := loadProject(tx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor {
		return nil, apperr.Forbidden("only the project owner can %s project %s", action, projectID)
	}
	return project, nil
}

func loadProject(tx *gorm.DB, projectID string) (*models.Project, error) {
	project, err := db.FindProject(tx, projectID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load project %s", projectID)
	}
	if project == nil {
		return nil, apperr.NotFound("project %s not found", projectID)
	}
	return project, nil
}

func loadMembership(tx *gorm.DB, projectID, userID string) (*models.ProjectMember, error) {
	member, err := db.FindMembership(tx, projectID, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to check project membership")
	}
	if member == nil {
		return nil, apperr.NotFound("user %s is not a member of project %s", userID, projectID)
	}
	return member, nil
}

func requireMember(tx *gorm.DB, projectID, user string) error {
	ok, err := db.IsProjectMember(tx, projectID, user)
	if err != nil {
		return apperr.FromDB(err, "failed to check project membership")
	}
	if !ok {
		return apperr.Forbidden("not a member of project %s", projectID)
	}
	return nil
}

func (s *Service) logger() *logrus.Entry {
	if s.log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.log
}
