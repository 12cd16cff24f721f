package models

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()

	if !ValidateTaskID(id) {
		t.Errorf("GenerateID() produced invalid ID: %s", id)
	}

	if len(id) != 11 { // "dt-" + 8 hex chars
		t.Errorf("GenerateID() wrong length: got %d, want 11", len(id))
	}

	id2 := GenerateID()
	if id == id2 {
		t.Error("GenerateID() produced duplicate IDs")
	}
}

func TestValidateTaskID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"dt-a1b2c3d4", true},
		{"dt-00000000", true},
		{"dt-ffffffff", true},
		{"", false},
		{"dt-", false},
		{"dt-abc", false},       // too short
		{"dt-a1b2c3d4g", false}, // invalid hex
		{"dt-A1B2C3D4", false},  // uppercase
		{"prj-a1b2c3d4", false}, // wrong prefix
	}

	for _, tt := range tests {
		got := ValidateTaskID(tt.id)
		if got != tt.valid {
			t.Errorf("ValidateTaskID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestPrefixedIDs(t *testing.T) {
	u := &User{}
	u.BeforeCreate(nil)
	if !strings.HasPrefix(u.UserID, UserIDPrefix) {
		t.Errorf("user ID = %q, want prefix %q", u.UserID, UserIDPrefix)
	}

	p := &Project{}
	p.BeforeCreate(nil)
	if !strings.HasPrefix(p.ID, ProjectIDPrefix) {
		t.Errorf("project ID = %q, want prefix %q", p.ID, ProjectIDPrefix)
	}

	h := &TaskHistory{}
	h.BeforeCreate(nil)
	if !strings.HasPrefix(h.ID, HistoryIDPrefix) {
		t.Errorf("history ID = %q, want prefix %q", h.ID, HistoryIDPrefix)
	}

	keep := &Task{ID: "dt-00000001"}
	keep.BeforeCreate(nil)
	if keep.ID != "dt-00000001" {
		t.Errorf("BeforeCreate overwrote an explicit ID: %s", keep.ID)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "open", "done", "Completed"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority Priority
		rank     int
		valid    bool
	}{
		{PriorityHigh, 2, true},
		{PriorityMedium, 1, true},
		{PriorityLow, 0, true},
		{"urgent", 0, false},
	}

	for _, tt := range tests {
		if got := tt.priority.Rank(); got != tt.rank {
			t.Errorf("Rank(%q) = %d, want %d", tt.priority, got, tt.rank)
		}
		if got := tt.priority.Valid(); got != tt.valid {
			t.Errorf("Valid(%q) = %v, want %v", tt.priority, got, tt.valid)
		}
	}
}

func TestTaskSetStatus(t *testing.T) {
	task := &Task{}

	for _, s := range Statuses {
		task.SetStatus(s)
		if task.Status != s {
			t.Errorf("SetStatus(%s) status = %s", s, task.Status)
		}
		if task.IsCompleted != (s == StatusCompleted) {
			t.Errorf("SetStatus(%s) IsCompleted = %v", s, task.IsCompleted)
		}
	}
}

func TestTaskOpenResolved(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		open     bool
		resolved bool
	}{
		{StatusNotStarted, true, false},
		{StatusPending, true, false},
		{StatusInProgress, true, false},
		{StatusOnHold, true, false},
		{StatusCancelled, false, false},
		{StatusCompleted, false, true},
	}

	for _, tt := range tests {
		task := &Task{Status: tt.status}
		if got := task.IsOpen(); got != tt.open {
			t.Errorf("IsOpen() with status %s = %v, want %v", tt.status, got, tt.open)
		}
		if got := task.IsResolved(); got != tt.resolved {
			t.Errorf("IsResolved() with status %s = %v, want %v", tt.status, got, tt.resolved)
		}
	}
}

func TestTaskInProject(t *testing.T) {
	empty := ""
	project := "prj-00000001"

	if (&Task{}).InProject() {
		t.Error("nil project should not count")
	}
	if (&Task{ProjectID: &empty}).InProject() {
		t.Error("empty project should not count")
	}
	if !(&Task{ProjectID: &project}).InProject() {
		t.Error("set project should count")
	}
}

func TestTaskTags(t *testing.T) {
	task := &Task{Tags: []Tag{{Name: "api"}, {Name: "ui"}}}

	if !task.HasTag("api") {
		t.Error("HasTag(api) = false")
	}
	if task.HasTag("API") {
		t.Error("tag names are case-sensitive")
	}

	names := task.TagNames()
	if len(names) != 2 || names[0] != "api" || names[1] != "ui" {
		t.Errorf("TagNames() = %v", names)
	}

	if got := (&Task{}).TagNames(); got == nil || len(got) != 0 {
		t.Errorf("TagNames() on untagged task = %#v, want empty slice", got)
	}
}

func TestHoursString(t *testing.T) {
	h := 0.25
	if got := HoursString(&h); got != "0.25h" {
		t.Errorf("HoursString(0.25) = %q", got)
	}
	if got := HoursString(nil); got != "-" {
		t.Errorf("HoursString(nil) = %q", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	u := &User{Email: "a@example.com"}
	if got := u.DisplayName(); got != "a@example.com" {
		t.Errorf("DisplayName() = %q, want the email", got)
	}

	u.FullName = "  "
	if got := u.DisplayName(); got != "a@example.com" {
		t.Errorf("DisplayName() with blank name = %q", got)
	}

	u.FullName = "Alice"
	if got := u.DisplayName(); got != "Alice" {
		t.Errorf("DisplayName() = %q, want Alice", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
	if got := NormalizeTagName("  api "); got != "api" {
		t.Errorf("NormalizeTagName() = %q", got)
	}
}

func TestAssignmentRole(t *testing.T) {
	if got := (&TaskAssignment{}).Role(); got != "assignee" {
		t.Errorf("Role() = %q, want assignee", got)
	}
	if got := (&TaskAssignment{IsWatcher: true}).Role(); got != "watcher" {
		t.Errorf("Role() = %q, want watcher", got)
	}
}

func TestCommentIsReply(t *testing.T) {
	empty := ""
	parent := "c1"

	if (&TaskComment{}).IsReply() {
		t.Error("top-level comment reported as reply")
	}
	if (&TaskComment{ParentCommentID: &empty}).IsReply() {
		t.Error("empty parent reported as reply")
	}
	if !(&TaskComment{ParentCommentID: &parent}).IsReply() {
		t.Error("reply not detected")
	}
}

func TestNotificationDefaults(t *testing.T) {
	n := &Notification{}
	n.BeforeCreate(nil)

	if n.ID == "" {
		t.Error("BeforeCreate did not set an ID")
	}
	if n.Type != NotificationGeneral {
		t.Errorf("Type = %q, want general", n.Type)
	}
	if ValidNotificationType("spam") {
		t.Error("unknown type accepted")
	}
	if !ValidNotificationType(NotificationProjectInvite) {
		t.Error("project_invite rejected")
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleOwner) || !ValidRole(RoleMember) {
		t.Error("known roles rejected")
	}
	if ValidRole("admin") {
		t.Error("unknown role accepted")
	}
}

func TestDependencySelfLoop(t *testing.T) {
	if !(&TaskDependency{TaskID: "dt-1", DependsOnID: "dt-1"}).IsSelfLoop() {
		t.Error("self loop not detected")
	}
	if (&TaskDependency{TaskID: "dt-1", DependsOnID: "dt-2"}).IsSelfLoop() {
		t.Error("edge reported as self loop")
	}
}
