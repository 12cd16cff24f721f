// Package users registers accounts and resolves them by ID or email.
package users

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
)

// Service manages user accounts
type Service struct {
	db  *gorm.DB
	log *logrus.Entry
}

// New creates a user Service
func New(database *gorm.DB, log *logrus.Entry) *Service {
	return &Service{db: database, log: log}
}

// Register creates an account for email. The email is trimmed and
// lower-cased; a second account with the same email is a Conflict.
func (s *Service) Register(ctx context.Context, email, fullName string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.InvalidArgument("invalid email %q", email)
	}

	user := &models.User{Email: email, FullName: strings.TrimSpace(fullName), IsActive: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := db.FindUserByEmail(tx, email)
		if err != nil {
			return apperr.FromDB(err, "failed to look up %s", email)
		}
		if existing != nil {
			return apperr.Conflict("email %s is already registered", email)
		}
		return apperr.FromDB(tx.Create(user).Error, "email %s is already registered", email)
	})
	if err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.WithFields(logrus.Fields{"user": user.UserID}).Info("user registered")
	}
	return user, nil
}

// Get returns the user with userID
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := db.FindUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load user %s", userID)
	}
	if user == nil {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return user, nil
}

// GetByEmail returns the user registered under email
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := db.FindUserByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to look up %s", email)
	}
	if user == nil {
		return nil, apperr.NotFound("no user registered as %s", models.NormalizeEmail(email))
	}
	return user, nil
}

// Resolve accepts either a user ID or an email address
func (s *Service) Resolve(ctx context.Context, ref string) (*models.User, error) {
	if strings.Contains(ref, "@") {
		return s.GetByEmail(ctx, ref)
	}
	return s.Get(ctx, strings.TrimSpace(ref))
}
