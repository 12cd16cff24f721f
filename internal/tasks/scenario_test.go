package tasks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtask/internal/apperr"
	"devtask/internal/assignments"
	"devtask/internal/graph"
	"devtask/internal/models"
	"devtask/internal/projects"
	"devtask/internal/tasks"
	"devtask/internal/testutil"
	"devtask/internal/users"
)

// TestOwnerMemberLifecycle walks one task from creation through sharing to deletion.
func TestOwnerMemberLifecycle(t *testing.T) {
	database := testutil.NewDB(t)
	log := testutil.Logger()
	sink := &testutil.RecordingSink{}
	ctx := context.Background()

	userSvc := users.New(database, log)
	taskSvc := tasks.New(database, log)
	graphSvc := graph.New(database)
	projectSvc := projects.New(database, sink, log)
	assignSvc := assignments.New(database, sink, log)

	alice, err := userSvc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err := userSvc.Register(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	project, err := projectSvc.Create(ctx, alice.UserID, "Launch", "")
	require.NoError(t, err)

	y, err := taskSvc.Create(ctx, alice.UserID, tasks.CreateInput{Title: "Y"})
	require.NoError(t, err)
	x, err := taskSvc.Create(ctx, alice.UserID, tasks.CreateInput{Title: "X", ProjectID: &project.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, x.Status)

	_, err = graphSvc.Set(ctx, x.ID, []string{y.ID}, alice.UserID)
	require.NoError(t, err)
	deps, err := graphSvc.DependenciesOf(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{y.ID}, deps)

	_, err = projectSvc.Invite(ctx, project.ID, bob.UserID, alice.UserID)
	require.NoError(t, err)

	watch, err := assignSvc.Assign(ctx, assignments.AssignInput{TaskID: x.ID, UserID: bob.UserID, IsWatcher: true}, alice.UserID)
	require.NoError(t, err)
	assert.True(t, watch.IsWatcher)

	_, err = taskSvc.Update(ctx, x.ID, tasks.UpdateInput{Title: testutil.Ptr("mine now")}, bob.UserID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	err = assignSvc.Remove(ctx, watch.ID, bob.UserID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	visible, err := taskSvc.Get(ctx, x.ID, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "X", visible.Title)
	roster, err := assignSvc.List(ctx, x.ID, bob.UserID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, watch.ID, roster[0].ID)

	require.Len(t, sink.For(bob.UserID), 2, "invite and watcher notifications")

	require.NoError(t, taskSvc.Delete(ctx, x.ID, alice.UserID))

	_, err = taskSvc.Get(ctx, x.ID, alice.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = assignSvc.List(ctx, x.ID, alice.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	dependents, err := graphSvc.DependentsOf(ctx, y.ID)
	require.NoError(t, err)
	assert.Empty(t, dependents)

	var orphans int64
	database.Model(&models.TaskAssignment{}).Where("task_id = ?", x.ID).Count(&orphans)
	assert.Zero(t, orphans)
	database.Model(&models.TaskDependency{}).Where("task_id = ? OR depends_on_id = ?", x.ID, x.ID).Count(&orphans)
	assert.Zero(t, orphans)
}
