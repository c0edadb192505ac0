package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/tasks"
)

// Module is the HTTP boundary: Fiber server, middleware and route wiring.
type Module struct {
	app       *fiber.App
	authPort  auth.Port
	taskPort  tasks.Port
	redisCli  *redis.Client
	limiter   *Limiter
	port      string
	redisAddr string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module. API_PORT selects the listen port,
// API_REDIS_ADDR enables the request rate limiter when set.
func NewModule() *Module {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "3000"
	}
	return &Module{
		port:      port,
		redisAddr: os.Getenv("API_REDIS_ADDR"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the modules this one depends on.
func (m *Module) Dependencies() []string {
	return []string{"auth", "tasks"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAdapter(container)
	case "tasks":
		m.taskPort = tasks.NewAdapter(container)
	}
}

// Start builds the Fiber app and begins serving.
func (m *Module) Start(ctx context.Context) error {
	if m.authPort == nil || m.taskPort == nil {
		return fmt.Errorf("auth/tasks dependencies not set")
	}

	if m.redisAddr != "" {
		m.redisCli = redis.NewClient(&redis.Options{
			Addr:         m.redisAddr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := m.redisCli.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", m.redisAddr, err)
		}
		m.limiter = NewLimiter(m.redisCli, "ratelimit:")
		log.Printf("[api] Rate limiting enabled (redis: %s)", m.redisAddr)
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	m.app.Use(RateLimitMiddleware(m.limiter, rateLimitMax, rateLimitWindow))

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts the server and the limiter's Redis connection down.
func (m *Module) Stop(_ context.Context) error {
	if m.redisCli != nil {
		if err := m.redisCli.Close(); err != nil {
			log.Printf("[api] Error closing Redis connection: %v", err)
		}
	}
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health reports the server state.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":       m.port,
			"rate_limit": m.limiter != nil,
		},
	}
}

// setupRoutes wires the HTTP surface.
func (m *Module) setupRoutes() {
	h := NewHandlers(m.taskPort, m.authPort)
	authRequired := AuthMiddleware(m.authPort)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{
			Status:  "healthy",
			Details: map[string]any{"module": "api"},
		})
	})

	authRoutes := m.app.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)

	taskRoutes := m.app.Group("/tasks")
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/mine", authRequired, h.MyTasks)
	taskRoutes.Post("/", authRequired, h.CreateTask)
	taskRoutes.Put("/:taskId/details", h.UpdateTaskDetails)
	taskRoutes.Put("/:taskId", h.UpdateTaskStatus)
	taskRoutes.Delete("/:taskId", h.DeleteTask)

	// Anything that fell through the router is a 404.
	m.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Route not found",
		})
	})
}

// errorHandler maps Fiber-level failures onto the uniform error body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
