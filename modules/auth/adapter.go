package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/task-api/domain/user"
)

// Port is the interface the HTTP layer uses to reach auth operations.
type Port interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	Register(ctx context.Context, email, password string) (RegisterResponse, error)
	Login(ctx context.Context, email, password string) (TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
}

// Adapter implements Port over the auth service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates an Adapter bound to the auth module's container.
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

// ValidateToken validates an access token and returns the caller's identity.
func (a *Adapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}
	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}
	return &domain.Claims{UserID: resp.UserID, Email: resp.Email}, nil
}

// Register creates a new account.
func (a *Adapter) Register(ctx context.Context, email, password string) (RegisterResponse, error) {
	req := RegisterRequest{Email: email, Password: password}
	var resp RegisterResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return RegisterResponse{}, err
	}
	return resp, nil
}

// Login verifies credentials and returns a token pair.
func (a *Adapter) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp TokenResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return TokenResponse{}, err
	}
	return resp, nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp TokenResponse
	if err := a.call(ctx, "refresh-token", &req, &resp); err != nil {
		return TokenResponse{}, err
	}
	return resp, nil
}
