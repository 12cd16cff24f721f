package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"devtask/internal/testutil"
)

func TestLoginWithKeyring(t *testing.T) {
	keyring.MockInit()
	store := NewStore(testutil.NewDB(t))

	_, _, err := store.Current("")
	assert.ErrorIs(t, err, ErrNoSession)

	src, err := store.Login("usr-a")
	require.NoError(t, err)
	assert.Equal(t, SourceKeyring, src)

	id, src, err := store.Current("")
	require.NoError(t, err)
	assert.Equal(t, "usr-a", id)
	assert.Equal(t, SourceKeyring, src)

	id, src, err = store.Current("usr-b")
	require.NoError(t, err)
	assert.Equal(t, "usr-b", id)
	assert.Equal(t, SourceOverride, src)

	require.NoError(t, store.Logout())
	_, _, err = store.Current("")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginFallsBackToDatabase(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring"))
	t.Cleanup(keyring.MockInit)
	store := NewStore(testutil.NewDB(t))

	src, err := store.Login("usr-a")
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, src)

	id, src, err := store.Current("")
	require.NoError(t, err)
	assert.Equal(t, "usr-a", id)
	assert.Equal(t, SourceDatabase, src)

	require.NoError(t, store.Logout())
	_, _, err = store.Current("")
	assert.ErrorIs(t, err, ErrNoSession)
}
