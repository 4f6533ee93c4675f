package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

// Manager derives the startup state from persisted storage and executes the
// storage effects emitted by state.Reduce.
type Manager struct {
	storage ports.SessionStorage
	logger  *logger.Logger
}

// NewManager creates a new session manager
func NewManager(storage ports.SessionStorage, logger *logger.Logger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger.WithComponent("session"),
	}
}

// InitialState reads the token and cached identity. Missing or malformed
// entries mean "logged out, oauth unused" and are never returned as errors.
func (m *Manager) InitialState(ctx context.Context) state.State {
	s := state.Default()

	token, ok, err := m.storage.Get(ctx, ports.SessionTokenKey)
	if err != nil {
		m.logger.Warnw("Failed to read session token", "error", err)
		return s
	}
	s.IsLoggedIn = ok && token != ""

	user, ok := m.CachedUser(ctx)
	if ok {
		s.HasUsedGoogleOauth = user.HasUsedGoogleOauth
	}

	return s
}

// CachedUser returns the identity stored at login, if any.
func (m *Manager) CachedUser(ctx context.Context) (entities.User, bool) {
	raw, ok, err := m.storage.Get(ctx, ports.SessionUserKey)
	if err != nil {
		m.logger.Warnw("Failed to read cached user", "error", err)
		return entities.User{}, false
	}
	if !ok || raw == "" {
		return entities.User{}, false
	}

	var user entities.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warnw("Ignoring malformed cached user", "error", err)
		return entities.User{}, false
	}
	return user, true
}

// Token returns the persisted bearer token. It satisfies the REST client's
// token source.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, ok, err := m.storage.Get(ctx, ports.SessionTokenKey)
	if err != nil {
		m.logger.Warnw("Failed to read session token", "error", err)
		return "", false
	}
	return token, ok && token != ""
}

// Apply runs effects in order and stops at the first failure.
func (m *Manager) Apply(ctx context.Context, effects []state.Effect) error {
	for _, effect := range effects {
		if err := m.apply(ctx, effect); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) apply(ctx context.Context, effect state.Effect) error {
	switch e := effect.(type) {
	case state.PersistUser:
		raw, err := json.Marshal(e.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		if err := m.storage.Set(ctx, ports.SessionUserKey, string(raw)); err != nil {
			return fmt.Errorf("failed to persist user: %w", err)
		}
		m.logger.Debugw("Persisted user identity", "user_id", e.User.ID)

	case state.PersistToken:
		if err := m.storage.Set(ctx, ports.SessionTokenKey, e.Token); err != nil {
			return fmt.Errorf("failed to persist session token: %w", err)
		}
		m.logger.Debugw("Persisted session token")

	case state.ClearSession:
		if err := m.storage.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		m.logger.Debugw("Cleared session")

	default:
		return fmt.Errorf("unsupported effect %T", effect)
	}
	return nil
}

// TokenInfo is what the client can read from a bearer token without the
// server's key.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
}

// InspectToken decodes a JWT bearer token without verifying its signature.
// Opaque tokens are reported with ok=false.
func InspectToken(token string, now time.Time) (TokenInfo, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, false
	}

	info := TokenInfo{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
		info.Expired = !now.Before(exp)
	}
	return info, true
}
