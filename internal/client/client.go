// Package client performs remote CRUD against the task backend and keeps
// an in-memory mirror of the current user's tasks and the global category
// list. Mutations are fire-and-confirm: the mirror changes only after the
// server acknowledged, so a failed call never needs a rollback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/model"
)

// ErrInvalidCredentials is returned by Login when no user record matches.
var ErrInvalidCredentials = errors.New("invalid username or password")

// FetchError covers any network failure or non-2xx response from the
// backend. Status is zero when the request never got a response.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Draft carries the user-entered fields of a new task. The id, timestamps
// and owner are filled in by the client and server.
type Draft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
	DueDate     string         `json:"dueDate"`
}

// Patch is a partial task update. Nil fields are left untouched by the
// server; UpdatedAt is restamped on every call.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	DueDate     *string         `json:"dueDate,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Client talks to the REST backend. The mirror is guarded by a mutex
// because the digest scheduler reads it from a cron goroutine while the
// update loop mutates it.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
}

// Option tweaks a Client; used by tests to pin the clock.
type Option func(*Client)

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login fetches the user list and compares credentials client-side. This is
// prototype-grade plaintext authentication inherited from the original
// system; do not reproduce it in anything production-facing.
func (c *Client) Login(ctx context.Context, username, password string) (model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return model.User{}, err
	}
	for _, user := range users {
		if user.Username == username && user.Password == password {
			return user.WithoutPassword(), nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}

// Load fetches the task collection for userID and the full category list,
// replacing both mirrors. On a task fetch failure the prior mirror stays
// untouched and the error surfaces. A category fetch failure is logged and
// swallowed: the views degrade to unlabeled categories, which beats
// dropping the whole reload.
func (c *Client) Load(ctx context.Context, userID int) error {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks?userId=%d", userID), nil, &tasks); err != nil {
		return err
	}

	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		log.Printf("fetch categories: %v", err)
		categories = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	if categories != nil {
		c.categories = categories
	}
	return nil
}

// Create sends a new task stamped with both timestamps and the owning user,
// then appends the server-returned record to the mirror.
func (c *Client) Create(ctx context.Context, userID int, draft Draft) (model.Task, error) {
	now := c.now()
	body := struct {
		Draft
		UserID    int       `json:"userId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}{Draft: draft, UserID: userID, CreatedAt: now, UpdatedAt: now}

	var created model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &created); err != nil {
		return model.Task{}, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, created)
	c.mu.Unlock()
	return created, nil
}

// Update sends a partial update with a fresh UpdatedAt and replaces the
// matching mirror record on success.
func (c *Client) Update(ctx context.Context, id int, patch Patch) (model.Task, error) {
	patch.UpdatedAt = c.now()

	var updated model.Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", id), patch, &updated); err != nil {
		return model.Task{}, err
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = updated
			break
		}
	}
	c.mu.Unlock()
	return updated, nil
}

// Remove deletes the task and drops it from the mirror. Success is err ==
// nil; the mirror is untouched on failure.
func (c *Client) Remove(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.tasks[:0]
	for _, task := range c.tasks {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	c.tasks = kept
	c.mu.Unlock()
	return nil
}

// Tasks returns a copy of the task mirror in collection order.
func (c *Client) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Categories returns a copy of the category mirror.
func (c *Client) Categories() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := fmt.Sprintf("%s %s", method, strings.SplitN(path, "?", 2)[0])

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: op, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
