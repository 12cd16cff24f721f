package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"devtask/internal/comments"
	"devtask/internal/models"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func sampleTask() *models.Task {
	project := "prj-00000001"
	hours := 1.5
	return &models.Task{
		ID:            "dt-0000abcd",
		Title:         "Test Task",
		Description:   "Test description",
		Status:        models.StatusInProgress,
		Priority:      models.PriorityHigh,
		EstimatedTime: &hours,
		UserID:        "usr-a",
		ProjectID:     &project,
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		Tags:          []models.Tag{{ID: 1, Name: "api"}, {ID: 2, Name: "ui"}},
		DependencyIDs: []string{"dt-00000001"},
	}
}

func TestNewFormatter(t *testing.T) {
	textFormatter := New(false)
	if _, ok := textFormatter.(*TextFormatter); !ok {
		t.Error("New(false) should return TextFormatter")
	}

	jsonFormatter := New(true)
	if _, ok := jsonFormatter.(*JSONFormatter); !ok {
		t.Error("New(true) should return JSONFormatter")
	}
}

func TestTextFormatterTask(t *testing.T) {
	f := &TextFormatter{}

	output := captureOutput(func() {
		f.Task(sampleTask())
	})

	for _, want := range []string{"dt-0000abcd", "Test Task", "in_progress", "high", "prj-00000001", "api, ui", "dt-00000001", "1.50h", "2024-01-02 03:04"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
	if !strings.Contains(output, "Actual:    -") {
		t.Error("unset actual time should print as -")
	}
}

func TestTextFormatterTaskBrief(t *testing.T) {
	f := &TextFormatter{}

	output := captureOutput(func() {
		f.TaskBrief(sampleTask())
	})

	if !strings.HasPrefix(output, "[dt-0000abcd]") {
		t.Errorf("brief should start with the ID, got %q", output)
	}
	if !strings.Contains(output, "[api,ui]") {
		t.Errorf("brief should list tags, got %q", output)
	}
}

func TestTextFormatterTaskList(t *testing.T) {
	f := &TextFormatter{}
	tasks := []models.Task{*sampleTask(), *sampleTask()}
	tasks[1].ID = "dt-0000beef"

	output := captureOutput(func() {
		f.TaskList(tasks, "Tasks")
	})

	if !strings.Contains(output, "Tasks (2):") {
		t.Error("output should contain the title with count")
	}
	if strings.Count(output, "\n") != 3 {
		t.Errorf("expected title plus two lines, got:\n%s", output)
	}
}

func TestTextFormatterAssignments(t *testing.T) {
	f := &TextFormatter{}

	output := captureOutput(func() {
		f.Assignments(nil)
	})
	if !strings.Contains(output, "No assignments") {
		t.Error("empty roster should say so")
	}

	output = captureOutput(func() {
		f.Assignments([]models.TaskAssignment{
			{ID: "a1", UserID: "usr-b"},
			{ID: "a2", UserID: "usr-c", IsWatcher: true},
		})
	})
	if !strings.Contains(output, "assignee usr-b") || !strings.Contains(output, "watcher  usr-c") {
		t.Errorf("unexpected roster output:\n%s", output)
	}
}

func TestTextFormatterComments(t *testing.T) {
	f := &TextFormatter{}
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tree := []*comments.Node{{
		TaskComment: models.TaskComment{ID: "c1", UserID: "usr-a", Content: "root", CreatedAt: at},
		Replies: []*comments.Node{{
			TaskComment: models.TaskComment{ID: "c2", UserID: "usr-b", Content: "reply", CreatedAt: at},
		}},
	}}

	output := captureOutput(func() {
		f.Comments(tree)
	})

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[1], "  ") || !strings.Contains(lines[1], "reply") {
		t.Errorf("reply should be indented, got %q", lines[1])
	}
}

func TestTextFormatterNotifications(t *testing.T) {
	f := &TextFormatter{}

	output := captureOutput(func() {
		f.Notifications([]models.Notification{
			{ID: "n1", Type: models.NotificationComment, Message: "new comment"},
			{ID: "n2", Type: models.NotificationGeneral, Message: "old news", IsRead: true},
		})
	})

	if !strings.Contains(output, "* [n1] comment new comment") {
		t.Errorf("unread notifications should be starred, got:\n%s", output)
	}
	if !strings.Contains(output, "  [n2] general old news") {
		t.Errorf("read notifications should not be starred, got:\n%s", output)
	}
}

func TestTextFormatterError(t *testing.T) {
	f := &TextFormatter{}

	output := captureStderr(func() {
		f.Error(errors.New("boom"))
	})

	if output != "Error: boom\n" {
		t.Errorf("Error() = %q", output)
	}
}

func TestJSONFormatterTask(t *testing.T) {
	f := &JSONFormatter{}

	output := captureOutput(func() {
		f.Task(sampleTask())
	})

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if result["id"] != "dt-0000abcd" {
		t.Errorf("id = %v", result["id"])
	}
	if result["is_completed"] != false {
		t.Errorf("is_completed = %v", result["is_completed"])
	}
	deps, ok := result["dependency_ids"].([]interface{})
	if !ok || len(deps) != 1 {
		t.Errorf("dependency_ids = %v", result["dependency_ids"])
	}
}

func TestJSONFormatterLists(t *testing.T) {
	f := &JSONFormatter{}

	tests := []struct {
		name string
		key  string
		fn   func()
	}{
		{"tasks", "tasks", func() { f.TaskList([]models.Task{*sampleTask()}, "ignored") }},
		{"assignments", "assignments", func() { f.Assignments([]models.TaskAssignment{{ID: "a1"}}) }},
		{"projects", "projects", func() { f.ProjectList([]models.Project{{ID: "prj-1"}}) }},
		{"notifications", "notifications", func() { f.Notifications([]models.Notification{{ID: "n1"}}) }},
		{"history", "history", func() { f.History([]models.TaskHistory{{ID: "h1"}}) }},
		{"comments", "comments", func() {
			f.Comments([]*comments.Node{{TaskComment: models.TaskComment{ID: "c1"}}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(tt.fn)

			var result map[string]interface{}
			if err := json.Unmarshal([]byte(output), &result); err != nil {
				t.Fatalf("output should be valid JSON: %v", err)
			}
			if result["count"] != float64(1) {
				t.Errorf("count = %v, want 1", result["count"])
			}
			if _, ok := result[tt.key]; !ok {
				t.Errorf("missing %q key in %v", tt.key, result)
			}
		})
	}
}

func TestJSONFormatterSuccessAndError(t *testing.T) {
	f := &JSONFormatter{}

	output := captureOutput(func() {
		f.Success("done")
	})
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if result["success"] != true || result["message"] != "done" {
		t.Errorf("Success() = %v", result)
	}

	output = captureOutput(func() {
		f.Error(errors.New("boom"))
	})
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if result["error"] != true || result["message"] != "boom" {
		t.Errorf("Error() = %v", result)
	}
}
