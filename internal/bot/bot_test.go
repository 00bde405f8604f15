package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/client"
	"taskdeck/internal/model"
	"taskdeck/internal/session"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks":
			json.NewEncoder(w).Encode([]model.Task{})
		case "/categories":
			json.NewEncoder(w).Encode([]model.Category{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return &Bot{
		client:   client.New(srv.URL),
		sessions: session.NewStore(t.TempDir()),
		states:   make(map[int64]*chatState),
	}
}

// The digest runs on the cron goroutine while the update loop keeps
// dismissing notifications; both sides must stay on their own snapshot of
// the shared state.
func TestDigestConcurrentWithDismiss(t *testing.T) {
	b := newTestBot(t)
	b.setUser(7, model.User{ID: 1, Username: "demo", Name: "Demo User"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			b.dismiss(7, fmt.Sprintf("overdue-%d", i))
		}
	}()

	for i := 0; i < 500; i++ {
		require.NoError(t, b.SendDigest(context.Background()))
	}
	<-done

	assert.Len(t, b.dismissed(7), 500)
}

func TestSetUserResetsDismissals(t *testing.T) {
	b := newTestBot(t)
	b.setUser(7, model.User{ID: 1, Username: "demo"})
	b.dismiss(7, "overdue-3")
	require.Len(t, b.dismissed(7), 1)

	b.setUser(7, model.User{ID: 2, Username: "other"})
	assert.Empty(t, b.dismissed(7), "a fresh login starts with no dismissed alerts")
}

func TestDigestTargetSnapshotsState(t *testing.T) {
	b := newTestBot(t)

	chatID, user, _ := b.digestTarget()
	assert.Nil(t, user, "no digest target before login")
	assert.Zero(t, chatID)

	b.setUser(42, model.User{ID: 9, Username: "demo"})
	b.dismiss(42, "due-today-1")

	chatID, user, dismissed := b.digestTarget()
	require.NotNil(t, user)
	assert.Equal(t, int64(42), chatID)
	assert.Equal(t, 9, user.ID)

	// The snapshot is a copy: mutating it must not leak back.
	dismissed["overdue-2"] = true
	assert.Len(t, b.dismissed(42), 1)

	user.ID = 100
	_, again, _ := b.digestTarget()
	assert.Equal(t, 9, again.ID)
}

func TestSendDigestWithoutLogin(t *testing.T) {
	b := newTestBot(t)
	assert.NoError(t, b.SendDigest(context.Background()), "no login means no digest, not an error")
}
