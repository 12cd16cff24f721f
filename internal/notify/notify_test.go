package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtask/internal/apperr"
	"devtask/internal/models"
	"devtask/internal/testutil"
)

func TestStoreSink(t *testing.T) {
	database := testutil.NewDB(t)
	sink := NewStoreSink(database)

	n := TaskNotification("usr-b", "hello", models.NotificationTaskAssignment, "dt-00000001")
	require.NoError(t, sink.Notify(context.Background(), n))

	var rows []models.Notification
	require.NoError(t, database.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "usr-b", rows[0].RecipientUserID)
	assert.Equal(t, models.NotificationTaskAssignment, rows[0].Type)
	require.NotNil(t, rows[0].RelatedTaskID)
	assert.Equal(t, "dt-00000001", *rows[0].RelatedTaskID)
	assert.NotEmpty(t, rows[0].ID)
	assert.False(t, rows[0].IsRead)
}

func TestSend_SwallowsAndLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	log := logrus.NewEntry(logger)

	sink := &testutil.RecordingSink{Fail: true}
	Send(context.Background(), sink, log, models.Notification{RecipientUserID: "usr-b", Message: "x"})

	assert.Empty(t, sink.Sent)
	assert.Contains(t, buf.String(), "notification dropped")
	assert.Contains(t, buf.String(), "usr-b")

	// A nil sink is a no-op
	Send(context.Background(), nil, log, models.Notification{})
}

func TestInbox(t *testing.T) {
	database := testutil.NewDB(t)
	testutil.CreateUser(t, database, "usr-a", "Alice")
	testutil.CreateUser(t, database, "usr-b", "Bob")
	inbox := NewInbox(database)
	ctx := context.Background()

	_, err := inbox.Create(ctx, "usr-a", CreateInput{RecipientUserID: "usr-a", Message: "me"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = inbox.Create(ctx, "usr-a", CreateInput{RecipientUserID: "usr-ghost", Message: "hi"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = inbox.Create(ctx, "usr-a", CreateInput{RecipientUserID: "usr-b", Message: "hi", Type: "bogus"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	first, err := inbox.Create(ctx, "usr-a", CreateInput{RecipientUserID: "usr-b", Message: "first"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationGeneral, first.Type)
	_, err = inbox.Create(ctx, "usr-a", CreateInput{RecipientUserID: "usr-b", Message: "second"})
	require.NoError(t, err)

	all, err := inbox.List(ctx, "usr-b", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = inbox.MarkRead(ctx, first.ID, "usr-a")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	read, err := inbox.MarkRead(ctx, first.ID, "usr-b")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := inbox.List(ctx, "usr-b", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)

	assert.ErrorIs(t, inbox.Delete(ctx, first.ID, "usr-a"), apperr.ErrForbidden)
	require.NoError(t, inbox.Delete(ctx, first.ID, "usr-b"))
	assert.ErrorIs(t, inbox.Delete(ctx, first.ID, "usr-b"), apperr.ErrNotFound)

	_, err = inbox.MarkRead(ctx, "nope", "usr-b")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
