package auth

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/task-api/domain/user"
)

func setupAuthService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewService(NewUserRepository(db), NewTokenManager(testTokenConfig()))
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID == "" {
		t.Error("Register() returned empty user id")
	}
	if u.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}

	pair, err := svc.Login(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Login() returned empty tokens")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}

	claims, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != u.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, u.ID)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"bad email", "not-an-email", "password123", ErrInvalidEmail},
		{"short password", "user@example.com", "short", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.email, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "user@example.com", "password456"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, "user@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "unknown@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Refresh(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("Refresh() returned empty access token")
	}

	// An access token must not pass as a refresh token.
	if _, err := svc.Refresh(ctx, pair.AccessToken); err == nil {
		t.Error("Refresh() with an access token succeeded, want error")
	}
}
