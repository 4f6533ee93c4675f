package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

const missingDetailsMessage = "Please provide the required details"

// AuthService handles the session lifecycle against the remote service
type AuthService struct {
	adapter
	api ports.AuthAPI
}

// NewAuthService creates a new auth service
func NewAuthService(store Store, api ports.AuthAPI, logger *logger.Logger) *AuthService {
	return &AuthService{
		adapter: newAdapter(store, logger, "auth"),
		api:     api,
	}
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, error) {
	req := ports.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrMissingCredentials), missingDetailsMessage)
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "login", err, networkErrorMessage, rejectionMessage(err, "Invalid email or password"))
	}

	s.startSession(ctx, resp, false)
	return &resp.User, nil
}

// Register creates an account. The caller logs in afterwards.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (*entities.User, error) {
	req := ports.RegisterRequest{Email: email, Password: password, Username: username}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrMissingCredentials), missingDetailsMessage)
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "register", err, networkErrorMessage, rejectionMessage(err, "Could not register"))
	}

	s.notify(ctx, entities.SeveritySuccess, "Registration successful. Please login to continue")
	s.logger.Infow("Account registered", "user_id", resp.User.ID)

	return &resp.User, nil
}

// OAuthLogin exchanges an authorization code issued by provider for a session.
func (s *AuthService) OAuthLogin(ctx context.Context, provider entities.OAuthProvider, code string) (*entities.User, error) {
	if !provider.IsValid() {
		return nil, s.invalid(ctx, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, provider), "Unsupported login provider")
	}
	req := ports.OAuthCodeRequest{Code: code}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrMissingCredentials), missingDetailsMessage)
	}

	resp, err := s.api.ExchangeOAuthCode(ctx, provider, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "exchange oauth code", err, networkErrorMessage, rejectionMessage(err, "Could not login"))
	}

	s.startSession(ctx, resp, provider == entities.OAuthGoogle)
	return &resp.User, nil
}

// Logout ends the remote session and resets the local state. Local state is
// kept when the server cannot be reached.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		se, ok := ports.AsStatusError(err)
		if !ok || se.StatusCode != http.StatusUnauthorized {
			return s.remoteFailure(ctx, "logout", err, networkErrorMessage, "Could not logout")
		}
		// An expired token still ends the local session.
		s.logger.Infow("Server session already gone", "status", se.StatusCode)
	}

	s.store.Dispatch(ctx, state.LogoutUser{})
	s.notify(ctx, entities.SeverityInfo, "Successfully logged out!")
	s.logger.Infow("Logged out")

	return nil
}

func (s *AuthService) startSession(ctx context.Context, resp *ports.AuthResponse, usedGoogle bool) {
	s.store.Dispatch(ctx, state.SetSessionToken{Token: resp.AccessToken})
	s.store.Dispatch(ctx, state.LoginUser{User: resp.User, HasUsedGoogleOauth: usedGoogle})
	s.notify(ctx, entities.SeveritySuccess, "Login successful")
	s.logger.Infow("Logged in", "user_id", resp.User.ID, "google", usedGoogle)
}

// rejectionMessage prefers the server's explanation over fallback.
func rejectionMessage(err error, fallback string) string {
	if se, ok := ports.AsStatusError(err); ok && se.Message != "" {
		return se.Message
	}
	return fallback
}
