package api

import (
	"context"

	"weekplanner/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// errorResponse is the JSON error payload for every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

// deleteResponse confirms a completed delete.
type deleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
