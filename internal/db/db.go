package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devtask/internal/models"
)

const (
	// WorkspaceDir is the directory name for devtask data
	WorkspaceDir = ".devtask"
	// DBFileName is the database filename within the workspace directory
	DBFileName = "db.sqlite"
	// SchemaVersion is the current schema version
	SchemaVersion = "1"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// InitDB initializes the database connection and runs migrations
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	dbMu.Lock()
	db = database
	dbMu.Unlock()
	return database, nil
}

// Open connects to the SQLite file at dbPath and migrates it, without
// touching the package-level connection.
func Open(dbPath string) (*gorm.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	database, err := gorm.Open(sqlite.Open(dbPath), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports multiple readers but only one writer.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	if err := database.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := database.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

// runMigrations runs all database migrations
func runMigrations(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Tag{},
		&models.TaskTagLink{},
		&models.TaskDependency{},
		&models.TaskAssignment{},
		&models.TaskComment{},
		&models.Notification{},
		&models.TaskHistory{},
		&models.Config{},
	); err != nil {
		return err
	}
	return database.Save(&models.Config{Key: models.ConfigSchemaVersion, Value: SchemaVersion}).Error
}

// GetDB returns the current database connection
func GetDB() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	err = sqlDB.Close()
	db = nil
	return err
}

// FindWorkspaceRoot searches upwards from the working directory for a devtask workspace
func FindWorkspaceRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		workspacePath := filepath.Join(dir, WorkspaceDir)
		if info, err := os.Stat(workspacePath); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a devtask workspace (no %s/ found)", WorkspaceDir)
		}
		dir = parent
	}
}

// GetDefaultDBPath returns the default database path for the current workspace
func GetDefaultDBPath() (string, error) {
	root, err := FindWorkspaceRoot()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "", cwdErr
		}
		return filepath.Join(cwd, WorkspaceDir, DBFileName), nil
	}
	return filepath.Join(root, WorkspaceDir, DBFileName), nil
}

// EnsureInitialized opens the database at dbPath unless a connection is already set.
// An empty dbPath means the default workspace location.
func EnsureInitialized(dbPath string) error {
	dbMu.RLock()
	isNil := db == nil
	dbMu.RUnlock()

	if !isNil {
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("devtask not initialized. Run 'devtask init' first")
	}
	_, err := InitDB(dbPath)
	return err
}

// SetConfig sets a configuration value
func SetConfig(key, value string) error {
	config := models.Config{Key: key, Value: value}
	return GetDB().Save(&config).Error
}

// GetConfig gets a configuration value
func GetConfig(key string) (string, error) {
	var config models.Config
	err := GetDB().Where("key = ?", key).First(&config).Error
	if err != nil {
		return "", err
	}
	return config.Value, nil
}

// DeleteConfig removes a configuration value
func DeleteConfig(key string) error {
	return GetDB().Where("key = ?", key).Delete(&models.Config{}).Error
}
