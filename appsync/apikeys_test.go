package appsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeys_Lifecycle(t *testing.T) {
	fb := newFakeBackend(t)
	a := newTestApp(t, fb, t.TempDir())
	u := login(t, a, EmailPassword("ada@example.com", "hunter2"))
	keys := u.APIKeys()
	ctx := context.Background()

	created, err := keys.Create(ctx, "ci")
	require.NoError(t, err)
	assert.Equal(t, "key-1", created.ID)
	assert.Equal(t, "secret", created.Value)
	assert.Equal(t, "ci", created.Name)
	assert.True(t, created.Enabled)

	fetched, err := keys.Fetch(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Empty(t, fetched.Value)

	require.NoError(t, keys.Disable(ctx, created.ID))

	fetched, err = keys.Fetch(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Enabled)

	require.NoError(t, keys.Enable(ctx, created.ID))

	_, err = keys.Create(ctx, "deploy")
	require.NoError(t, err)

	all, err := keys.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ci", all[0].Name)
	assert.True(t, all[0].Enabled)
	assert.Equal(t, "deploy", all[1].Name)

	require.NoError(t, keys.Delete(ctx, created.ID))

	all, err = keys.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAPIKeys_NotFound(t *testing.T) {
	fb := newFakeBackend(t)
	a := newTestApp(t, fb, t.TempDir())
	u := login(t, a, EmailPassword("ada@example.com", "hunter2"))
	keys := u.APIKeys()
	ctx := context.Background()

	key, err := keys.Fetch(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, key)

	require.NoError(t, keys.Delete(ctx, "missing"))

	err = keys.Enable(ctx, "missing")
	require.ErrorIs(t, err, ErrIllegalArgument)
	assert.ErrorContains(t, err, "missing")

	err = keys.Disable(ctx, "missing")
	require.ErrorIs(t, err, ErrIllegalArgument)
}

func TestAPIKeys_EmptyName(t *testing.T) {
	fb := newFakeBackend(t)
	a := newTestApp(t, fb, t.TempDir())
	u := login(t, a, EmailPassword("ada@example.com", "hunter2"))

	_, err := u.APIKeys().Create(context.Background(), "")
	require.ErrorIs(t, err, ErrIllegalArgument)
}

func TestAPIKeys_LoggedOut(t *testing.T) {
	fb := newFakeBackend(t)
	a := newTestApp(t, fb, t.TempDir())
	u := login(t, a, EmailPassword("ada@example.com", "hunter2"))
	require.NoError(t, u.LogOut(context.Background()))

	_, err := u.APIKeys().FetchAll(context.Background())
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
