package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the interface other modules use to reach task operations.
type Port interface {
	Create(ctx context.Context, req *CreateTaskRequest) (TaskView, error)
	ListAll(ctx context.Context) ([]TaskView, error)
	UpdateStatus(ctx context.Context, taskID, status string) (UpdateTaskResponse, error)
	UpdateDetails(ctx context.Context, req *UpdateDetailsRequest) (UpdateTaskResponse, error)
	Delete(ctx context.Context, taskID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]TaskView, error)
}

// Adapter implements Port over the tasks service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates an Adapter bound to the tasks module's container.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Create creates a task owned by the request's user.
func (a *Adapter) Create(ctx context.Context, req *CreateTaskRequest) (TaskView, error) {
	var resp TaskView
	if err := a.call(ctx, "create", req, &resp); err != nil {
		return TaskView{}, err
	}
	return resp, nil
}

// ListAll returns every stored task.
func (a *Adapter) ListAll(ctx context.Context) ([]TaskView, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-all", &ListTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// UpdateStatus changes the status of a task.
func (a *Adapter) UpdateStatus(ctx context.Context, taskID, status string) (UpdateTaskResponse, error) {
	req := UpdateStatusRequest{TaskID: taskID, Status: status}
	var resp UpdateTaskResponse
	if err := a.call(ctx, "update-status", &req, &resp); err != nil {
		return UpdateTaskResponse{}, err
	}
	return resp, nil
}

// UpdateDetails changes title, description and date of a task.
func (a *Adapter) UpdateDetails(ctx context.Context, req *UpdateDetailsRequest) (UpdateTaskResponse, error) {
	var resp UpdateTaskResponse
	if err := a.call(ctx, "update-details", req, &resp); err != nil {
		return UpdateTaskResponse{}, err
	}
	return resp, nil
}

// Delete removes a task, reporting whether one existed.
func (a *Adapter) Delete(ctx context.Context, taskID string) (bool, error) {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete", &req, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// ListByUser returns the tasks owned by userID, newest first.
func (a *Adapter) ListByUser(ctx context.Context, userID string) ([]TaskView, error) {
	req := ListByUserRequest{UserID: userID}
	var resp ListTasksResponse
	if err := a.call(ctx, "list-by-user", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
