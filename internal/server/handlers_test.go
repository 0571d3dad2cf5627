package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/api"
	"todo/internal/domain"
	"todo/internal/services"
	"todo/internal/storage"
	"todo/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (f *failingStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return assert.AnError
}

func setupTestServer(t *testing.T, s storage.Storage, opts ...store.Option) (*Server, *store.TaskStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if s == nil {
		s = storage.NewMemoryStorage()
	}
	ts := store.Open(context.Background(), s, opts...)
	t.Cleanup(func() { ts.Close(context.Background()) })
	return New(api.New(ts, api.WithWaitForWrites(time.Second))), ts
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestHandleState(t *testing.T) {
	srv, ts := setupTestServer(t, nil)
	ts.SetUserName("Ada")
	_, _, err := ts.AddTodo(domain.TaskDraft{Title: "Write", Category: domain.CategoryDeep})
	require.NoError(t, err)

	w, env := doRequest(t, srv, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var overview services.Overview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	require.NotNil(t, overview.UserName)
	assert.Equal(t, "Ada", *overview.UserName)
	assert.Equal(t, "Hello, Ada", overview.Greeting)
	assert.Equal(t, "1 task today", overview.Summary)
	require.Len(t, overview.Todos, 1)
	assert.Equal(t, 1, overview.Todos[0].Position)
}

func TestHandleSetProfile(t *testing.T) {
	srv, ts := setupTestServer(t, nil)

	w, env := doRequest(t, srv, http.MethodPut, "/api/profile", gin.H{"name": " Grace "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	name, ok := ts.UserName()
	assert.True(t, ok)
	assert.Equal(t, "Grace", name)

	w, env = doRequest(t, srv, http.MethodPut, "/api/profile", gin.H{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestHandleAddTodo(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       gin.H{"title": "Review PR", "details": "before lunch", "category": "Deep"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing category",
			body:       gin.H{"title": "Review PR"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Please select Deep or Easy task first",
		},
		{
			name:       "missing title",
			body:       gin.H{"category": "easy"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Please enter a title",
		},
		{
			name:       "not json",
			body:       "title=x",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setupTestServer(t, nil)

			w, env := doRequest(t, srv, http.MethodPost, "/api/todos", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, env.Error)
			}
			if tt.wantStatus == http.StatusCreated {
				var item services.TodoItem
				require.NoError(t, json.Unmarshal(env.Data, &item))
				assert.NotEmpty(t, item.ID)
				assert.Equal(t, domain.CategoryDeep, item.Category)
				assert.False(t, item.Done)
			}
		})
	}
}

func TestHandleAddTodo_CategoryFull(t *testing.T) {
	srv, _ := setupTestServer(t, nil, store.WithCapacity(domain.CategoryDeep, 1))

	w, _ := doRequest(t, srv, http.MethodPost, "/api/todos", gin.H{"title": "One", "category": "deep"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doRequest(t, srv, http.MethodPost, "/api/todos", gin.H{"title": "Two", "category": "deep"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", env.Code)
	assert.Equal(t, "Please clear Deep tasks first", env.Error)
}

func TestHandleAddTodo_StorageFailure(t *testing.T) {
	srv, ts := setupTestServer(t, &failingStorage{storage.NewMemoryStorage()})

	w, env := doRequest(t, srv, http.MethodPost, "/api/todos", gin.H{"title": "Kept", "category": "easy"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "STORAGE_ERROR", env.Code)
	// the change stays applied in memory
	assert.Len(t, ts.Todos(), 1)
}

func TestHandleTodoLifecycle(t *testing.T) {
	srv, ts := setupTestServer(t, nil)
	task, _, err := ts.AddTodo(domain.TaskDraft{Title: "Draft", Category: domain.CategoryEasy})
	require.NoError(t, err)

	w, env := doRequest(t, srv, http.MethodPut, "/api/todos/"+task.ID,
		gin.H{"title": "Final", "details": "ship it", "category": "deep"})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var item services.TodoItem
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, "Final", item.Title)
	assert.Equal(t, domain.CategoryDeep, item.Category)

	w, env = doRequest(t, srv, http.MethodPost, "/api/todos/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.True(t, item.Done)

	w, _ = doRequest(t, srv, http.MethodDelete, "/api/todos/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, ts.Todos())

	w, env = doRequest(t, srv, http.MethodDelete, "/api/todos/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestHandleListTodos(t *testing.T) {
	srv, ts := setupTestServer(t, nil)
	_, _, err := ts.AddTodo(domain.TaskDraft{Title: "Deep one", Category: domain.CategoryDeep})
	require.NoError(t, err)
	_, _, err = ts.AddTodo(domain.TaskDraft{Title: "Easy one", Category: domain.CategoryEasy})
	require.NoError(t, err)

	w, env := doRequest(t, srv, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []services.TodoItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)

	w, env = doRequest(t, srv, http.MethodGet, "/api/todos?category=easy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Easy one", items[0].Title)

	w, env = doRequest(t, srv, http.MethodGet, "/api/todos?category=urgent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.Code)
}

func TestHandleEvents(t *testing.T) {
	srv, ts := setupTestServer(t, nil)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpSrv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := readEvents(resp.Body)

	initial := nextEvent(t, events)
	assert.Equal(t, 0, initial.TaskCount)

	_, _, err = ts.AddTodo(domain.TaskDraft{Title: "Streamed", Category: domain.CategoryDeep})
	require.NoError(t, err)

	update := nextEvent(t, events)
	assert.Equal(t, 1, update.TaskCount)
	require.Len(t, update.Todos, 1)
	assert.Equal(t, "Streamed", update.Todos[0].Title)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestOffer_KeepsNewest(t *testing.T) {
	ch := make(chan *services.Overview, 1)
	offer(ch, &services.Overview{TaskCount: 1})
	offer(ch, &services.Overview{TaskCount: 2})

	got := <-ch
	assert.Equal(t, 2, got.TaskCount)
}

func TestCheckLoopback(t *testing.T) {
	assert.NoError(t, checkLoopback("127.0.0.1:8080"))
	assert.NoError(t, checkLoopback("localhost:0"))
	assert.NoError(t, checkLoopback("[::1]:9000"))
	assert.Error(t, checkLoopback("0.0.0.0:8080"))
	assert.Error(t, checkLoopback(":8080"))
	assert.Error(t, checkLoopback("no-port"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ShutsDownWithOpenEventStream(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	nextEvent(t, readEvents(resp.Body))

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), shutdownTimeout/2)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop while a client was streaming")
	}
}
