package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new account",
		Description: "Creates an account and emails a magic login link",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestLogin",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Request login link",
		Description: "Emails a magic login link to an existing account",
		Tags:        []string{"Authentication"},
	}, s.handleRequestLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "redeemMagicLink",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/magic/{token}",
		Summary:     "Redeem login link",
		Description: "Exchanges a single-use magic link token for an access token",
		Tags:        []string{"Authentication"},
	}, s.handleRedeemMagicLink)
}

// === DTOs ===

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	Email string `json:"email" validate:"required,email,max=254" doc:"Email address"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// RegisterResponse contains the result of a registration.
type RegisterResponse struct {
	UserID  string `json:"user_id" doc:"Created user ID"`
	Handle  string `json:"handle" doc:"Derived unique handle"`
	Message string `json:"message" doc:"Status message"`
}

// RegisterOutput wraps the register response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

// LoginRequest is the request body for requesting a login link.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// RedeemInput carries the magic link token from the URL.
type RedeemInput struct {
	Token string `path:"token" doc:"Single-use magic link token"`
}

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID          string     `json:"id" doc:"User ID"`
	Email       string     `json:"email" doc:"User email"`
	DisplayName string     `json:"display_name" doc:"Display name"`
	Handle      string     `json:"handle" doc:"Unique handle"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation timestamp"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last login timestamp"`
}

// AuthResponse contains the access token and user info.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn   int          `json:"expires_in" doc:"Token expiry in seconds"`
	User        UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Register(ctx, input.Body.Name, input.Body.Email)
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		Body: RegisterResponse{
			UserID:  user.ID,
			Handle:  user.Handle,
			Message: "Account created. Check your email for a login link.",
		},
	}, nil
}

func (s *Server) handleRequestLogin(ctx context.Context, input *LoginInput) (*MessageOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Auth.RequestLoginLink(ctx, input.Body.Email); err != nil {
		return nil, err
	}

	return &MessageOutput{
		Body: MessageResponse{Message: "Login link sent. Check your email."},
	}, nil
}

func (s *Server) handleRedeemMagicLink(ctx context.Context, input *RedeemInput) (*AuthOutput, error) {
	accessToken, user, err := s.services.Auth.Redeem(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{
		Body: AuthResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.services.Auth.AccessTokenDuration().Seconds()),
			User:        mapUserResponse(user),
		},
	}, nil
}

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Handle:      user.Handle,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
