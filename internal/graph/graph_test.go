package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtask/internal/apperr"
	"devtask/internal/db"
	"devtask/internal/models"
	"devtask/internal/testutil"
)

func setup(t *testing.T) (*Manager, *testutil.Clock) {
	t.Helper()
	database := testutil.NewDB(t)
	testutil.CreateTask(t, database, "dt-0000000a", "usr-a", nil)
	testutil.CreateTask(t, database, "dt-0000000b", "usr-a", nil)
	testutil.CreateTask(t, database, "dt-0000000c", "usr-a", nil)
	testutil.CreateTask(t, database, "dt-0000000x", "usr-b", nil)

	clock := testutil.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	m := New(database)
	m.Now = clock.Now
	return m, clock
}

func TestSet_ForwardAndReverse(t *testing.T) {
	m, clock := setup(t)
	ctx := context.Background()

	deps, err := m.Set(ctx, "dt-0000000c", []string{"dt-0000000b", "dt-0000000a", "dt-0000000a"}, "usr-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"dt-0000000a", "dt-0000000b"}, deps)

	got, err := m.DependenciesOf(ctx, "dt-0000000c")
	require.NoError(t, err)
	assert.Equal(t, []string{"dt-0000000a", "dt-0000000b"}, got)

	for _, id := range []string{"dt-0000000a", "dt-0000000b"} {
		dependents, err := m.DependentsOf(ctx, id)
		require.NoError(t, err)
		assert.Contains(t, dependents, "dt-0000000c")
	}

	task, err := db.FindTask(m.db, "dt-0000000c")
	require.NoError(t, err)
	assert.True(t, task.UpdatedAt.Equal(clock.Now()), "updated_at = %v, want %v", task.UpdatedAt, clock.Now())
}

func TestSet_ReplacesWholesale(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	_, err := m.Set(ctx, "dt-0000000c", []string{"dt-0000000a", "dt-0000000b"}, "usr-a")
	require.NoError(t, err)

	_, err = m.Set(ctx, "dt-0000000c", []string{"dt-0000000b"}, "usr-a")
	require.NoError(t, err)

	got, err := m.DependenciesOf(ctx, "dt-0000000c")
	require.NoError(t, err)
	assert.Equal(t, []string{"dt-0000000b"}, got)

	dependents, err := m.DependentsOf(ctx, "dt-0000000a")
	require.NoError(t, err)
	assert.Empty(t, dependents)

	// An empty list clears every edge
	_, err = m.Set(ctx, "dt-0000000c", nil, "usr-a")
	require.NoError(t, err)
	got, err = m.DependenciesOf(ctx, "dt-0000000c")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSet_SelfDependencyRejected(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	_, err := m.Set(ctx, "dt-0000000a", []string{"dt-0000000a"}, "usr-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	var count int64
	m.db.Model(&models.TaskDependency{}).Count(&count)
	assert.Zero(t, count)
}

func TestSet_Failures(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		deps   []string
		actor  string
		kind   error
	}{
		{"missing task", "dt-nothere", []string{"dt-0000000a"}, "usr-a", apperr.ErrNotFound},
		{"missing dependency", "dt-0000000c", []string{"dt-0000000a", "dt-ghost"}, "usr-a", apperr.ErrNotFound},
		{"cross owner dependency", "dt-0000000c", []string{"dt-0000000x"}, "usr-a", apperr.ErrForbidden},
		{"not the owner", "dt-0000000c", []string{"dt-0000000a"}, "usr-b", apperr.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := setup(t)
			ctx := context.Background()

			// Existing edges survive a rejected replace
			_, err := m.Set(ctx, "dt-0000000c", []string{"dt-0000000b"}, "usr-a")
			require.NoError(t, err)

			_, err = m.Set(ctx, tt.taskID, tt.deps, tt.actor)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			got, err := m.DependenciesOf(ctx, "dt-0000000c")
			require.NoError(t, err)
			assert.Equal(t, []string{"dt-0000000b"}, got)
		})
	}
}

func TestSet_MissingListsIDs(t *testing.T) {
	m, _ := setup(t)
	_, err := m.Set(context.Background(), "dt-0000000c", []string{"dt-ghost1", "dt-ghost2"}, "usr-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dt-ghost1, dt-ghost2")
}

func TestSet_LongerCyclesAllowed(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	_, err := m.Set(ctx, "dt-0000000a", []string{"dt-0000000b"}, "usr-a")
	require.NoError(t, err)
	_, err = m.Set(ctx, "dt-0000000b", []string{"dt-0000000a"}, "usr-a")
	require.NoError(t, err)

	got, err := m.DependenciesOf(ctx, "dt-0000000b")
	require.NoError(t, err)
	assert.Equal(t, []string{"dt-0000000a"}, got)
}

func TestQueries_UnknownTask(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	_, err := m.DependenciesOf(ctx, "dt-ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = m.DependentsOf(ctx, "dt-ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
