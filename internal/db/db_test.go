package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"devtask/internal/models"
)

func setupTestDB(t *testing.T) func() {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "devtask-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	_, err = InitDB(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to init test DB: %v", err)
	}

	return func() {
		CloseDB()
		os.RemoveAll(tmpDir)
	}
}

func createTask(t *testing.T, id, owner string) {
	t.Helper()
	now := time.Now()
	task := &models.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    models.StatusNotStarted,
		Priority:  models.PriorityMedium,
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB().Create(task).Error; err != nil {
		t.Fatalf("Failed to create task %s: %v", id, err)
	}
}

func TestInitDB(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	if GetDB() == nil {
		t.Fatal("GetDB() returned nil after InitDB")
	}

	version, err := GetConfig(models.ConfigSchemaVersion)
	if err != nil {
		t.Fatalf("GetConfig(schema_version) error: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %s, want %s", version, SchemaVersion)
	}
}

func TestFindTask(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	createTask(t, "dt-00000001", "usr-a")

	found, err := FindTask(GetDB(), "dt-00000001")
	if err != nil {
		t.Fatalf("FindTask() error: %v", err)
	}
	if found == nil || found.Title != "Task dt-00000001" {
		t.Fatalf("FindTask() = %+v, want task dt-00000001", found)
	}

	missing, err := FindTask(GetDB(), "dt-missing")
	if err != nil {
		t.Fatalf("FindTask() missing error: %v", err)
	}
	if missing != nil {
		t.Error("FindTask() should return nil for non-existent task")
	}
}

func TestFindTasks(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	createTask(t, "dt-00000001", "usr-a")
	createTask(t, "dt-00000002", "usr-b")

	found, err := FindTasks(GetDB(), []string{"dt-00000001", "dt-00000002", "dt-nope"})
	if err != nil {
		t.Fatalf("FindTasks() error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("FindTasks() len = %d, want 2", len(found))
	}
	if found["dt-00000002"].UserID != "usr-b" {
		t.Errorf("FindTasks() owner = %s, want usr-b", found["dt-00000002"].UserID)
	}

	empty, err := FindTasks(GetDB(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("FindTasks(nil) = %v, %v; want empty", empty, err)
	}
}

func TestDeleteTaskCascade(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	database := GetDB()
	createTask(t, "dt-00000001", "usr-a")
	createTask(t, "dt-00000002", "usr-a")
	createTask(t, "dt-00000003", "usr-a")

	tag := &models.Tag{Name: "backend"}
	database.Create(tag)
	database.Create(&models.TaskTagLink{TaskID: "dt-00000001", TagID: tag.ID})
	database.Create(&models.TaskDependency{TaskID: "dt-00000001", DependsOnID: "dt-00000002"})
	database.Create(&models.TaskDependency{TaskID: "dt-00000003", DependsOnID: "dt-00000001"})
	database.Create(&models.TaskAssignment{TaskID: "dt-00000001", UserID: "usr-b"})
	database.Create(&models.TaskComment{TaskID: "dt-00000001", UserID: "usr-b", Content: "hi", CreatedAt: time.Now()})

	if err := DeleteTaskCascade(database, "dt-00000001"); err != nil {
		t.Fatalf("DeleteTaskCascade() error: %v", err)
	}

	counts := map[string]interface{}{
		"tasks":       &models.Task{},
		"links":       &models.TaskTagLink{},
		"assignments": &models.TaskAssignment{},
		"comments":    &models.TaskComment{},
	}
	for name, model := range counts {
		var n int64
		q := database.Model(model)
		if name == "tasks" {
			q = q.Where("id = ?", "dt-00000001")
		} else {
			q = q.Where("task_id = ?", "dt-00000001")
		}
		q.Count(&n)
		if n != 0 {
			t.Errorf("%s remaining = %d, want 0", name, n)
		}
	}

	var edges int64
	database.Model(&models.TaskDependency{}).Count(&edges)
	if edges != 0 {
		t.Errorf("dependency edges remaining = %d, want 0", edges)
	}

	// The shared tag itself survives
	var tags int64
	database.Model(&models.Tag{}).Count(&tags)
	if tags != 1 {
		t.Errorf("tags = %d, want 1", tags)
	}
}

func TestDeleteCommentTree(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	database := GetDB()
	now := time.Now()
	root := &models.TaskComment{TaskID: "dt-1", UserID: "u", Content: "root", CreatedAt: now}
	database.Create(root)
	child := &models.TaskComment{TaskID: "dt-1", UserID: "u", Content: "child", ParentCommentID: &root.ID, CreatedAt: now}
	database.Create(child)
	grandchild := &models.TaskComment{TaskID: "dt-1", UserID: "u", Content: "grandchild", ParentCommentID: &child.ID, CreatedAt: now}
	database.Create(grandchild)
	other := &models.TaskComment{TaskID: "dt-1", UserID: "u", Content: "other", CreatedAt: now}
	database.Create(other)

	removed, err := DeleteCommentTree(database, root.ID)
	if err != nil {
		t.Fatalf("DeleteCommentTree() error: %v", err)
	}
	if removed != 3 {
		t.Errorf("DeleteCommentTree() removed = %d, want 3", removed)
	}

	var remaining []models.TaskComment
	database.Find(&remaining)
	if len(remaining) != 1 || remaining[0].ID != other.ID {
		t.Errorf("remaining comments = %+v, want only %s", remaining, other.ID)
	}
}

func TestSetGetConfig(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	if err := SetConfig("test_key", "test_value"); err != nil {
		t.Fatalf("SetConfig() error: %v", err)
	}

	value, err := GetConfig("test_key")
	if err != nil {
		t.Fatalf("GetConfig() error: %v", err)
	}
	if value != "test_value" {
		t.Errorf("GetConfig() = %s, want test_value", value)
	}

	if err := SetConfig("test_key", "updated_value"); err != nil {
		t.Fatalf("SetConfig() update error: %v", err)
	}
	value, _ = GetConfig("test_key")
	if value != "updated_value" {
		t.Errorf("GetConfig() after update = %s, want updated_value", value)
	}

	if err := DeleteConfig("test_key"); err != nil {
		t.Fatalf("DeleteConfig() error: %v", err)
	}
	if _, err := GetConfig("test_key"); err == nil {
		t.Error("GetConfig() should error after DeleteConfig()")
	}
}

func TestCloseDB(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	if err := CloseDB(); err != nil {
		t.Fatalf("CloseDB() error: %v", err)
	}
	if GetDB() != nil {
		t.Error("GetDB() should return nil after CloseDB()")
	}
	if err := CloseDB(); err != nil {
		t.Errorf("CloseDB() second call error: %v", err)
	}
}
