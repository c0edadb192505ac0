package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/task-api/docstore"
	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/modules/cache"
)

const cacheTTL = 5 * time.Minute

// Module owns the task document store and exposes task operations as
// request-reply services. The database and the optional Redis cache are opened
// in Start and closed in Stop.
type Module struct {
	db        *gorm.DB
	redisCli  *redis.Client
	service   *Service
	dbPath    string
	redisAddr string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the tasks module. TASKS_DB_PATH selects the database file;
// TASKS_REDIS_ADDR enables the listing cache when set.
func NewModule() *Module {
	dbPath := os.Getenv("TASKS_DB_PATH")
	if dbPath == "" {
		dbPath = "tasks.db"
	}
	return &Module{
		dbPath:    dbPath,
		redisAddr: os.Getenv("TASKS_REDIS_ADDR"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasks"
}

// Start opens the database, migrates the document table and wires the service.
func (m *Module) Start(ctx context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	store := docstore.New(db)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate document table: %w", err)
	}

	var listCache *cache.Cache
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
		listCache = cache.New(m.redisCli, "tasks:", cacheTTL)
		log.Printf("[tasks] Listing cache enabled (redis: %s)", m.redisAddr)
	}

	m.service = NewService(store, listCache)
	log.Printf("[tasks] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the Redis and database connections.
func (m *Module) Stop(_ context.Context) error {
	if m.redisCli != nil {
		if err := m.redisCli.Close(); err != nil {
			log.Printf("[tasks] Error closing Redis connection: %v", err)
		}
	}
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[tasks] Module stopped")
	return nil
}

// Health pings the database and, when enabled, Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}

	details := map[string]any{
		"database": m.dbPath,
		"cache":    m.redisAddr != "",
	}
	if m.redisCli != nil {
		if err := m.redisCli.Ping(ctx).Err(); err != nil {
			return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err), Details: details}
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational", Details: details}
}

// RegisterServices registers the task request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func(mono.ServiceContainer) error{
		"create": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "create", json.Unmarshal, json.Marshal, m.handleCreate)
		},
		"list-all": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "list-all", json.Unmarshal, json.Marshal, m.handleListAll)
		},
		"update-status": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "update-status", json.Unmarshal, json.Marshal, m.handleUpdateStatus)
		},
		"update-details": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "update-details", json.Unmarshal, json.Marshal, m.handleUpdateDetails)
		},
		"delete": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "delete", json.Unmarshal, json.Marshal, m.handleDelete)
		},
		"list-by-user": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "list-by-user", json.Unmarshal, json.Marshal, m.handleListByUser)
		},
	}
	for name, register := range services {
		if err := register(container); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[tasks] Registered services: create, list-all, update-status, update-details, delete, list-by-user")
	return nil
}

func (m *Module) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskView, error) {
	t, err := m.service.Create(ctx, req.UserID, req.Title, req.Description, req.Date, domain.Status(req.Status))
	if err != nil {
		return TaskView{}, err
	}
	return toView(t), nil
}

func (m *Module) handleListAll(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	ts, err := m.service.ListAll(ctx)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: toViews(ts)}, nil
}

func (m *Module) handleUpdateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (UpdateTaskResponse, error) {
	t, err := m.service.UpdateStatus(ctx, req.TaskID, domain.Status(req.Status))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UpdateTaskResponse{Found: false}, nil
		}
		return UpdateTaskResponse{}, err
	}
	return UpdateTaskResponse{Found: true, Task: toView(t)}, nil
}

func (m *Module) handleUpdateDetails(ctx context.Context, req UpdateDetailsRequest, _ *mono.Msg) (UpdateTaskResponse, error) {
	t, err := m.service.UpdateDetails(ctx, req.TaskID, req.Title, req.Description, req.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UpdateTaskResponse{Found: false}, nil
		}
		return UpdateTaskResponse{}, err
	}
	return UpdateTaskResponse{Found: true, Task: toView(t)}, nil
}

func (m *Module) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	deleted, err := m.service.Delete(ctx, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{Deleted: deleted}, nil
}

func (m *Module) handleListByUser(ctx context.Context, req ListByUserRequest, _ *mono.Msg) (ListTasksResponse, error) {
	ts, err := m.service.ListByUser(ctx, req.UserID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: toViews(ts)}, nil
}
