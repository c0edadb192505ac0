package tasks

import (
	domain "github.com/example/task-api/domain/task"
)

// TaskView is the task shape exchanged over the service container and the API.
type TaskView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
}

// CreateTaskRequest asks for a new task owned by UserID.
type CreateTaskRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// ListTasksRequest asks for every stored task.
type ListTasksRequest struct{}

// ListTasksResponse carries an unscoped task listing.
type ListTasksResponse struct {
	Tasks []TaskView `json:"tasks"`
}

// UpdateStatusRequest changes only the status of a task.
type UpdateStatusRequest struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// UpdateDetailsRequest changes title, description and date of a task.
type UpdateDetailsRequest struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// UpdateTaskResponse reports the merged task. Found is false when the id does
// not exist; absence is a value here, not an error.
type UpdateTaskResponse struct {
	Found bool     `json:"found"`
	Task  TaskView `json:"task"`
}

// DeleteTaskRequest removes a task by id.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse reports whether a deletion occurred.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ListByUserRequest asks for the tasks owned by UserID, newest first.
type ListByUserRequest struct {
	UserID string `json:"user_id"`
}

// toView converts a domain task to its container/API shape.
func toView(t domain.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Status:      string(t.Status),
		UserID:      t.UserID,
	}
}

func toViews(ts []domain.Task) []TaskView {
	views := make([]TaskView, 0, len(ts))
	for _, t := range ts {
		views = append(views, toView(t))
	}
	return views
}
