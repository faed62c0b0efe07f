package service

import (
	"context"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/auth"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
	"github.com/shelfmarkapp/shelfmark-server/internal/id"
	smail "github.com/shelfmarkapp/shelfmark-server/internal/mail"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

// AuthService handles registration and passwordless login.
type AuthService struct {
	store        *sqlite.Store
	tokens       *auth.TokenService
	mailer       *smail.Mailer
	baseURL      string
	linkDuration time.Duration
	logger       *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *sqlite.Store, tokens *auth.TokenService, mailer *smail.Mailer, baseURL string, linkDuration time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokens:       tokens,
		mailer:       mailer,
		baseURL:      strings.TrimRight(baseURL, "/"),
		linkDuration: linkDuration,
		logger:       logger,
	}
}

// Register creates an account, derives a unique handle from the display
// name, and sends a login link.
func (s *AuthService) Register(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, errors.Validation("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.Validation("a valid email address is required")
	}

	handle, err := domain.DeriveUniqueHandle(name, func(candidate string) (bool, error) {
		return s.store.HandleExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:          userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Email:       email,
		DisplayName: name,
		Handle:      handle,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return nil, errors.AlreadyExists("an account with this email already exists")
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "handle", user.Handle)
	s.mailer.SendWelcome(user.Email, user.DisplayName, user.Handle)

	if err := s.sendLoginLink(ctx, user); err != nil {
		// The account exists; the user can request another link.
		s.logger.Error("initial login link failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// RequestLoginLink emails a fresh magic link to an existing account.
func (s *AuthService) RequestLoginLink(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NotFound("no account with this email")
		}
		return err
	}

	return s.sendLoginLink(ctx, user)
}

// sendLoginLink creates a magic link row and mails it.
func (s *AuthService) sendLoginLink(ctx context.Context, user *domain.User) error {
	token, err := auth.GenerateMagicToken()
	if err != nil {
		return err
	}
	linkID, err := id.Generate("lnk")
	if err != nil {
		return err
	}

	now := time.Now()
	link := &domain.MagicLink{
		ID:        linkID,
		CreatedAt: now,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.linkDuration),
	}
	if err := s.store.CreateMagicLink(ctx, link); err != nil {
		return err
	}

	loginURL := s.baseURL + "/login/" + url.PathEscape(token)
	if err := s.mailer.SendMagicLink(user.Email, user.DisplayName, loginURL); err != nil {
		return errors.RemoteService("could not send login email").WithCause(err)
	}

	s.logger.Info("login link issued", "user_id", user.ID)
	return nil
}

// Redeem exchanges a magic link token for an access token. Each link
// works exactly once.
func (s *AuthService) Redeem(ctx context.Context, token string) (string, *domain.User, error) {
	now := time.Now()

	link, err := s.store.RedeemMagicLink(ctx, token, now)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			return "", nil, errors.Unauthorized("invalid login link")
		case errors.Is(err, errors.ErrTokenExpired):
			return "", nil, errors.TokenExpired("this login link has expired or was already used")
		default:
			return "", nil, err
		}
	}

	user, err := s.store.GetUser(ctx, link.UserID)
	if err != nil {
		return "", nil, err
	}

	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return accessToken, user, nil
}

// AccessTokenDuration returns how long issued access tokens live.
func (s *AuthService) AccessTokenDuration() time.Duration {
	return s.tokens.AccessTokenDuration()
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return claims, nil
}
