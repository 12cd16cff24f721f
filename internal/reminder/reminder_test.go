package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtask/internal/models"
	"devtask/internal/testutil"
)

var now = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

func TestMessage(t *testing.T) {
	tests := []struct {
		name   string
		due    time.Time
		want   string
		wantOK bool
	}{
		{"tomorrow", now.Add(20 * time.Hour), "Reminder: Task 'Ship' is due tomorrow.", true},
		{"later today", now.Add(2 * time.Hour), "Task 'Ship' is due today!", true},
		{"earlier today", now.Add(-2 * time.Hour), "Task 'Ship' is due today!", true},
		{"yesterday", now.Add(-24 * time.Hour), "Task 'Ship' is overdue!", true},
		{"next week", now.AddDate(0, 0, 7), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Message("Ship", tt.due, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckOnce(t *testing.T) {
	database := testutil.NewDB(t)
	testutil.CreateUser(t, database, "usr-a", "Alice")

	due := func(id string, at time.Time, status models.TaskStatus) {
		task := testutil.CreateTask(t, database, id, "usr-a", nil)
		require.NoError(t, database.Model(task).Updates(map[string]any{"due_date": at, "status": status}).Error)
	}
	due("dt-00000001", now.Add(20*time.Hour), models.StatusInProgress)
	due("dt-00000002", now.Add(-48*time.Hour), models.StatusNotStarted)
	due("dt-00000003", now.Add(-48*time.Hour), models.StatusCompleted)
	due("dt-00000004", now.AddDate(0, 1, 0), models.StatusNotStarted)
	testutil.CreateTask(t, database, "dt-00000005", "usr-a", nil)

	for _, a := range []models.TaskAssignment{
		{TaskID: "dt-00000001", UserID: "usr-b"},
		{TaskID: "dt-00000001", UserID: "usr-c", IsWatcher: true},
		{TaskID: "dt-00000002", UserID: "usr-b"},
		{TaskID: "dt-00000003", UserID: "usr-b"},
		{TaskID: "dt-00000004", UserID: "usr-b"},
	} {
		require.NoError(t, database.Create(&a).Error)
	}

	sink := &testutil.RecordingSink{}
	checker := New(database, sink, testutil.Logger())

	sent, err := checker.CheckOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	bob := sink.For("usr-b")
	require.Len(t, bob, 2)
	messages := []string{bob[0].Message, bob[1].Message}
	assert.Contains(t, messages, "Reminder: Task 'Task dt-00000001' is due tomorrow.")
	assert.Contains(t, messages, "Task 'Task dt-00000002' is overdue!")
	assert.Equal(t, models.NotificationGeneral, bob[0].Type)

	// A second run repeats the reminders
	sent, err = checker.CheckOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Len(t, sink.Sent, 6)
}

func TestRun_StopsOnCancel(t *testing.T) {
	database := testutil.NewDB(t)
	checker := New(database, &testutil.RecordingSink{}, testutil.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- checker.Run(ctx, time.Hour, func() time.Time { return now }) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
