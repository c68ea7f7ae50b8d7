package client

import (
	"os"
	"path/filepath"
	"testing"

	"movie-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store := NewSessionStore(path)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := &Session{
		User:  response.UserResponse{ID: "u-1", Email: "asha@example.com", Name: "Asha", Roles: []string{"customer", "admin"}},
		Token: "token-1",
	}
	require.NoError(t, store.Save(session))
	assert.Equal(t, "token-1", store.Current().Token)

	reopened := NewSessionStore(path)
	loaded, err = reopened.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "asha@example.com", loaded.User.Email)
	assert.True(t, loaded.IsAdmin())

	require.NoError(t, reopened.Clear())
	assert.Nil(t, reopened.Current())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clear kedua tidak error
	require.NoError(t, reopened.Clear())
}

func TestSessionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSessionStore(path).Load()
	assert.Error(t, err)
}

func TestSessionStore_MemoryOnly(t *testing.T) {
	store := NewSessionStore("")
	require.NoError(t, store.Save(&Session{Token: "t"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "t", loaded.Token)
	assert.False(t, loaded.IsAdmin())
}
