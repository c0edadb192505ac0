package api

import (
	"github.com/example/task-api/modules/tasks"
)

// CreateTaskRequest is the POST /tasks body.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// UpdateStatusRequest is the PUT /tasks/:taskId body.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateDetailsRequest is the PUT /tasks/:taskId/details body.
type UpdateDetailsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the POST /auth/refresh body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TaskMessageResponse wraps a single task with a confirmation message.
type TaskMessageResponse struct {
	Message string         `json:"message"`
	Task    tasks.TaskView `json:"task"`
}

// TasksMessageResponse wraps a task listing with a confirmation message.
type TasksMessageResponse struct {
	Message string           `json:"message"`
	Tasks   []tasks.TaskView `json:"tasks"`
}

// MessageResponse carries only a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body. Error carries the machine-readable
// code, or the raw failure payload on 500s.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
