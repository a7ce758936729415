package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"weekplanner/domain"
)

type mockStore struct {
	tasks      []domain.Task
	task       domain.Task
	err        error
	lastFilter domain.Filter
	lastID     int64
	lastNew    domain.NewTask
	lastPatch  domain.TaskPatch
	created    int64
	deleted    []int64
}

func (m *mockStore) ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	m.lastFilter = f
	return m.tasks, m.err
}

func (m *mockStore) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	m.lastID = id
	if m.err != nil {
		return domain.Task{}, m.err
	}
	return m.task, nil
}

func (m *mockStore) CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error) {
	m.lastNew = n
	if m.err != nil {
		return domain.Task{}, m.err
	}
	m.created++
	return domain.Task{
		ID: m.created, Title: n.Title, Member: n.Member,
		Category: n.Category, Day: n.Day, Completed: n.Completed,
	}, nil
}

func (m *mockStore) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	m.lastID = id
	m.lastPatch = patch
	if m.err != nil {
		return domain.Task{}, m.err
	}
	return patch.Apply(m.task), nil
}

func (m *mockStore) DeleteTask(ctx context.Context, id int64) error {
	m.lastID = id
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error json: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected error field in body: %s", rec.Body.String())
	}
	return resp.Error
}

func TestListTasks(t *testing.T) {
	store := &mockStore{tasks: []domain.Task{
		{ID: 1, Title: "Stofzuigen", Member: "Susan", Category: "huishouden", Day: "2026-01-20"},
	}}
	c, rec := newContext(t, http.MethodGet, "/api/tasks?member=Susan&category=all&startDate=2026-01-19&endDate=2026-01-25", "")

	if err := listTasks(store, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	want := domain.Filter{Member: "Susan", Category: "all", StartDate: "2026-01-19", EndDate: "2026-01-25"}
	if store.lastFilter != want {
		t.Fatalf("filter not forwarded: %#v", store.lastFilter)
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 1 {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestListTasksEmptyIsArray(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodGet, "/api/tasks", "")

	if err := listTasks(store, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestListTasksStoreFailure(t *testing.T) {
	store := &mockStore{err: errors.New("disk on fire")}
	c, rec := newContext(t, http.MethodGet, "/api/tasks", "")

	if err := listTasks(store, log.New())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
	decodeError(t, rec)
}

func TestGetTaskByID(t *testing.T) {
	store := &mockStore{task: domain.Task{ID: 7, Title: "Zwemles", Member: "Luc", Category: "sport", Day: "2026-01-22"}}
	c, rec := newContext(t, http.MethodGet, "/api/tasks/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := getTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if store.lastID != 7 {
		t.Fatalf("id not forwarded: %d", store.lastID)
	}
	var task domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if task != store.task {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	store := &mockStore{err: domain.ErrTaskNotFound}
	c, rec := newContext(t, http.MethodGet, "/api/tasks/99999", "")
	c.SetParamNames("id")
	c.SetParamValues("99999")

	if err := getTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Task not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestGetTaskNonNumericID(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodGet, "/api/tasks/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := getTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
	if store.lastID != 0 {
		t.Fatalf("store should not be consulted for a malformed id, got %d", store.lastID)
	}
}

func TestCreateTask(t *testing.T) {
	store := &mockStore{}
	body := `{"title":"Stofzuigen woonkamer","member":"Susan","category":"huishouden","day":"2026-01-20"}`
	c, rec := newContext(t, http.MethodPost, "/api/tasks", body)

	if err := createTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rec.Code)
	}
	var task domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if task.Completed {
		t.Fatal("expected completed to default to false")
	}
	if task.Title != "Stofzuigen woonkamer" || task.Member != "Susan" {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestCreateTaskMissingFields(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodPost, "/api/tasks", `{"title":"x"}`)

	if err := createTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	decodeError(t, rec)
	if store.lastNew.Title != "" {
		t.Fatal("store should not be touched on validation failure")
	}
}

func TestCreateTaskInvalidBody(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodPost, "/api/tasks", `{"title":`)

	if err := createTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestUpdateTaskCompleted(t *testing.T) {
	store := &mockStore{task: domain.Task{
		ID: 3, Title: "Huiswerk wiskunde", Member: "Fien", Category: "school", Day: "2026-01-21",
	}}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/3", `{"completed":true}`)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := updateTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var task domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !task.Completed {
		t.Fatal("expected completed true")
	}
	if task.Title != store.task.Title || task.Day != store.task.Day {
		t.Fatalf("other fields changed: %#v", task)
	}
	if store.lastPatch.Completed == nil || store.lastPatch.Title != nil {
		t.Fatalf("unexpected patch forwarded: %#v", store.lastPatch)
	}
}

func TestUpdateTaskEmptyBody(t *testing.T) {
	store := &mockStore{err: &domain.ValidationError{Message: "no fields to update"}}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/3", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := updateTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "No fields to update" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if store.lastID != 3 {
		t.Fatalf("store not consulted, lastID = %d", store.lastID)
	}
}

func TestUpdateTaskEmptyBodyUnknownID(t *testing.T) {
	store := &mockStore{err: domain.ErrTaskNotFound}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/99999", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("99999")

	if err := updateTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Task not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	store := &mockStore{err: domain.ErrTaskNotFound}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/42", `{"completed":true}`)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := updateTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Task not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestDeleteTask(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodDelete, "/api/tasks/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := deleteTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var resp deleteResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 5 || resp.Message == "" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Fatalf("delete not forwarded: %#v", store.deleted)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	store := &mockStore{err: domain.ErrTaskNotFound}
	c, rec := newContext(t, http.MethodDelete, "/api/tasks/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := deleteTask(store)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestRegisterRoutesEndToEnd(t *testing.T) {
	e := echo.New()
	store := &mockStore{tasks: []domain.Task{{ID: 1, Title: "t", Member: "Gido", Category: "werk", Day: "2026-01-20"}}}
	Register(e, store, log.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200 got %d", rec.Code)
	}
}
