// Package session remembers which user the CLI acts as.
//
// The user ID lives in the system keyring. When no keyring is available it
// is kept in the workspace config table instead.
package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"gorm.io/gorm"

	"devtask/internal/models"
)

// Source tells where the session user came from
type Source string

// Sources in lookup order
const (
	SourceOverride Source = "override"
	SourceKeyring  Source = "keyring"
	SourceDatabase Source = "database"
)

// ErrNoSession is returned when no user is logged in
var ErrNoSession = errors.New("no session user. Run 'devtask login <email>' or pass --as")

// Store reads and writes the session user
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by database for the keyring fallback
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// Current returns the acting user ID. A non-empty override wins, then the
// keyring, then the config table.
func (s *Store) Current(override string) (string, Source, error) {
	if override != "" {
		return override, SourceOverride, nil
	}
	if id, err := keyring.Get(models.KeyringServiceName, models.KeyringSessionUserKey); err == nil && id != "" {
		return id, SourceKeyring, nil
	}

	var row models.Config
	err := s.db.Where("key = ?", models.ConfigSessionUser).Take(&row).Error
	switch {
	case err == nil && row.Value != "":
		return row.Value, SourceDatabase, nil
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return "", "", ErrNoSession
	default:
		return "", "", fmt.Errorf("failed to read session user: %w", err)
	}
}

// Login stores userID as the session user and reports where it was kept
func (s *Store) Login(userID string) (Source, error) {
	if err := keyring.Set(models.KeyringServiceName, models.KeyringSessionUserKey, userID); err == nil {
		s.db.Where("key = ?", models.ConfigSessionUser).Delete(&models.Config{})
		return SourceKeyring, nil
	}
	if err := s.db.Save(&models.Config{Key: models.ConfigSessionUser, Value: userID}).Error; err != nil {
		return "", fmt.Errorf("failed to store session user: %w", err)
	}
	return SourceDatabase, nil
}

// Logout forgets the session user in both places
func (s *Store) Logout() error {
	keyring.Delete(models.KeyringServiceName, models.KeyringSessionUserKey)
	if err := s.db.Where("key = ?", models.ConfigSessionUser).Delete(&models.Config{}).Error; err != nil {
		return fmt.Errorf("failed to clear session user: %w", err)
	}
	return nil
}
