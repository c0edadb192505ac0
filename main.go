package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/task-api/modules/api"
	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/tasks"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Independent modules first, then the HTTP boundary that depends on them.
	app.Register(auth.NewModule())
	app.Register(tasks.NewModule())
	app.Register(api.NewModule())

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("task-api started")
	log.Println("")
	log.Println("  Public endpoints:")
	log.Println("  POST   /auth/register          - Register a new user")
	log.Println("  POST   /auth/login             - Login and get tokens")
	log.Println("  POST   /auth/refresh           - Refresh access token")
	log.Println("  GET    /tasks                  - List all tasks")
	log.Println("  PUT    /tasks/:taskId          - Update task status")
	log.Println("  PUT    /tasks/:taskId/details  - Update task details")
	log.Println("  DELETE /tasks/:taskId          - Delete a task")
	log.Println("  GET    /health                 - Health check")
	log.Println("")
	log.Println("  Protected endpoints (Bearer token):")
	log.Println("  POST   /tasks                  - Create a task")
	log.Println("  GET    /tasks/mine             - List my tasks")
	log.Println("")
}
