package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/model"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec, "no session on a fresh store")

	user := model.User{ID: 3, Username: "demo", Name: "Demo User", Password: "demo123"}
	require.NoError(t, store.Save(Record{User: user, ChatID: 42}))

	rec, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.User.ID)
	assert.Equal(t, int64(42), rec.ChatID)
	assert.Empty(t, rec.User.Password, "password never reaches disk")
}

func TestStoreSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	store := NewStore(dir)

	require.NoError(t, store.Save(Record{User: model.User{ID: 1}, ChatID: 1}))

	raw, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestStoreClear(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Clear(), "clearing an absent session is fine")

	require.NoError(t, store.Save(Record{User: model.User{ID: 1}, ChatID: 1}))
	require.NoError(t, store.Clear())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}
