package api

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/task-api/domain/task"
	user "github.com/example/task-api/domain/user"
	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/tasks"
)

// Handlers contains the HTTP handlers for tasks and auth.
type Handlers struct {
	tasks tasks.Port
	auth  auth.Port
}

// NewHandlers creates a Handlers instance over the given ports.
func NewHandlers(taskPort tasks.Port, authPort auth.Port) *Handlers {
	return &Handlers{tasks: taskPort, auth: authPort}
}

// claims returns the authenticated identity deposited by AuthMiddleware.
func claims(c *fiber.Ctx) (*user.Claims, bool) {
	cl, ok := c.Locals(UserContextKey).(*user.Claims)
	return cl, ok
}

// ListTasks handles GET /tasks: every stored task, for all users.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	list, err := h.tasks.ListAll(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to list tasks", err)
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"date":        req.Date,
		"status":      req.Status,
	}); missing != "" {
		return badRequest(c, "Required field(s) missing: "+missing)
	}
	if !domain.Status(req.Status).IsValid() {
		return badRequest(c, "Invalid task status: "+req.Status)
	}

	created, err := h.tasks.Create(c.UserContext(), &tasks.CreateTaskRequest{
		UserID:      cl.UserID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Status:      req.Status,
	})
	if err != nil {
		if strings.Contains(err.Error(), tasks.ErrInvalidDate.Error()) {
			return badRequest(c, "Invalid task date, expected ISO-8601")
		}
		if strings.Contains(err.Error(), tasks.ErrInvalidStatus.Error()) {
			return badRequest(c, "Invalid task status: "+req.Status)
		}
		return internalError(c, "Failed to create task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskMessageResponse{
		Message: "Task created successfully",
		Task:    created,
	})
}

// UpdateTaskStatus handles PUT /tasks/:taskId.
func (h *Handlers) UpdateTaskStatus(c *fiber.Ctx) error {
	taskID := c.Params("taskId")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Status == "" || !domain.Status(req.Status).IsValid() {
		return badRequest(c, "Task status missing or invalid")
	}

	resp, err := h.tasks.UpdateStatus(c.UserContext(), taskID, req.Status)
	if err != nil {
		return internalError(c, "Failed to update task status", err)
	}
	if !resp.Found {
		return notFound(c)
	}

	return c.Status(fiber.StatusOK).JSON(TaskMessageResponse{
		Message: "Task status updated successfully",
		Task:    resp.Task,
	})
}

// UpdateTaskDetails handles PUT /tasks/:taskId/details.
func (h *Handlers) UpdateTaskDetails(c *fiber.Ctx) error {
	taskID := c.Params("taskId")

	var req UpdateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"date":        req.Date,
	}); missing != "" {
		return badRequest(c, "Required field(s) missing: "+missing)
	}

	resp, err := h.tasks.UpdateDetails(c.UserContext(), &tasks.UpdateDetailsRequest{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		if strings.Contains(err.Error(), tasks.ErrInvalidDate.Error()) {
			return badRequest(c, "Invalid task date, expected ISO-8601")
		}
		return internalError(c, "Failed to update task details", err)
	}
	if !resp.Found {
		return notFound(c)
	}

	return c.Status(fiber.StatusOK).JSON(TaskMessageResponse{
		Message: "Task details updated successfully",
		Task:    resp.Task,
	})
}

// DeleteTask handles DELETE /tasks/:taskId.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	deleted, err := h.tasks.Delete(c.UserContext(), c.Params("taskId"))
	if err != nil {
		return internalError(c, "Failed to delete task", err)
	}
	if !deleted {
		return notFound(c)
	}
	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Message: "Task deleted successfully",
	})
}

// MyTasks handles GET /tasks/mine: the caller's tasks, newest first.
func (h *Handlers) MyTasks(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	list, err := h.tasks.ListByUser(c.UserContext(), cl.UserID)
	if err != nil {
		return internalError(c, "Failed to list user tasks", err)
	}

	return c.Status(fiber.StatusOK).JSON(TasksMessageResponse{
		Message: "Tasks retrieved successfully",
		Tasks:   list,
	})
}

// Register handles POST /auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := h.auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.authError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Refresh handles POST /auth/refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	resp, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// authError maps auth service failures crossing the container boundary to
// status codes by their error messages.
func (h *Handlers) authError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, auth.ErrInvalidCredentials.Error()):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(msg, auth.ErrUserExists.Error()):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(msg, auth.ErrInvalidEmail.Error()):
		return badRequest(c, "Invalid email format")
	case strings.Contains(msg, "password must be"):
		return badRequest(c, "Password must be between 8 and 72 characters")
	default:
		return internalError(c, "Authentication failed", err)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: "Task not found",
	})
}

// internalError surfaces the failure payload alongside a generic message.
func internalError(c *fiber.Ctx, message string, err error) error {
	log.Printf("[api] %s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   err.Error(),
		Message: message,
	})
}

// missingFields names the empty required fields, comma separated.
func missingFields(fields map[string]string) string {
	names := []string{"title", "description", "date", "status"}
	var missing []string
	for _, name := range names {
		if v, ok := fields[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	return strings.Join(missing, ", ")
}
