package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskdeck/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A file per test: the pool behind gorm makes ":memory:" hand every
	// connection its own empty database.
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func seedTask(t *testing.T, db *gorm.DB, task model.Task) model.Task {
	t.Helper()
	require.NoError(t, NewTaskRepository(db).Create(context.Background(), &task))
	return task
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListTasksFiltersByUser(t *testing.T) {
	db := newTestDB(t)
	router := NewRouter(db)

	seedTask(t, db, model.Task{Title: "mine", UserID: 1})
	seedTask(t, db, model.Task{Title: "theirs", UserID: 2})

	w := doRequest(router, http.MethodGet, "/tasks?userId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)
}

func TestListTasksRequiresUserID(t *testing.T) {
	router := NewRouter(newTestDB(t))
	w := doRequest(router, http.MethodGet, "/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskStoresTimestampsVerbatim(t *testing.T) {
	db := newTestDB(t)
	router := NewRouter(db)

	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	w := doRequest(router, http.MethodPost, "/tasks", map[string]any{
		"id":        777, // client-sent id is ignored, the server assigns
		"title":     "Buy milk",
		"priority":  "low",
		"status":    "pending",
		"dueDate":   "2025-06-16",
		"userId":    1,
		"createdAt": created,
		"updatedAt": created,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.NotEqual(t, 777, task.ID)
	assert.NotZero(t, task.ID)
	assert.True(t, task.CreatedAt.Equal(created), "server never restamps")
	assert.Equal(t, "2025-06-16", task.DueDate)
}

func TestUpdateTaskMergesPatch(t *testing.T) {
	db := newTestDB(t)
	router := NewRouter(db)

	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	task := seedTask(t, db, model.Task{
		Title: "old", Description: "keep me", Priority: model.PriorityLow,
		Status: model.StatusPending, UserID: 1, CreatedAt: created, UpdatedAt: created,
	})

	updated := created.AddDate(0, 0, 2)
	w := doRequest(router, http.MethodPatch, "/tasks/"+itoa(task.ID), map[string]any{
		"status":    "in-progress",
		"updatedAt": updated.Format(time.RFC3339Nano),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, "keep me", got.Description, "absent fields stay untouched")
	assert.True(t, got.UpdatedAt.Equal(updated))
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestUpdateMissingTask(t *testing.T) {
	router := NewRouter(newTestDB(t))
	w := doRequest(router, http.MethodPatch, "/tasks/999", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t)
	router := NewRouter(db)
	task := seedTask(t, db, model.Task{Title: "doomed", UserID: 1})

	w := doRequest(router, http.MethodDelete, "/tasks/"+itoa(task.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/tasks/"+itoa(task.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db), "second seed on a populated database is a no-op")

	users, err := NewUserRepository(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "demo", users[0].Username)

	categories, err := NewCategoryRepository(db).ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	tasks, err := NewTaskRepository(db).ListByUser(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestUsersAndCategoriesEndpoints(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Seed(context.Background(), db))
	router := NewRouter(db)

	w := doRequest(router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "demo123", users[0].Password, "prototype login needs the password on the wire")

	w = doRequest(router, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []model.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 5)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
