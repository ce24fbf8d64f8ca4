// Package auth provides token management for the Runforge API client.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/runforge-io/runforge-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNoCredentials            = errors.New("no credentials configured")
)

// TokenManager provides access tokens for API requests.
type TokenManager interface {
	// GetToken returns a valid access token, refreshing if necessary.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces a token refresh.
	RefreshToken(ctx context.Context) error
	// SetToken stores a token and its expiry.
	SetToken(token string, expiresAt time.Time)
}

// RefreshFunc exchanges an API key for a short-lived access token.
type RefreshFunc func(ctx context.Context, apiKey string) (token string, expiresAt time.Time, err error)

// tokenExpirationBuffer is subtracted from expiry so a token is refreshed
// slightly before the platform would reject it.
const tokenExpirationBuffer = 30 * time.Second

// StaticTokenManager serves one fixed token. Used when the caller supplies an
// access token directly.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a token manager around a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the static token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, nil
}

// RefreshToken fails: a static token has nothing to refresh with.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

// SetToken replaces the static token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

// KeyTokenManager mints short-lived tokens from a long-lived API key via a
// refresh function. Without a refresh function the key itself is used as the
// bearer token.
type KeyTokenManager struct {
	apiKey  string
	refresh RefreshFunc

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewKeyTokenManager creates a token manager for an API key.
func NewKeyTokenManager(apiKey string, refresh RefreshFunc) *KeyTokenManager {
	return &KeyTokenManager{
		apiKey:  apiKey,
		refresh: refresh,
	}
}

// GetToken returns a valid access token, minting a fresh one when the cached
// token is missing or about to expire.
func (m *KeyTokenManager) GetToken(ctx context.Context) (string, error) {
	if m.refresh == nil {
		return m.apiKey, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && time.Now().Before(m.expiresAt.Add(-tokenExpirationBuffer)) {
		return m.token, nil
	}

	err := m.refreshLocked(ctx)
	if err != nil {
		return "", err
	}

	return m.token, nil
}

// RefreshToken forces a token refresh.
func (m *KeyTokenManager) RefreshToken(ctx context.Context) error {
	if m.refresh == nil {
		return ErrStaticTokenCannotRefresh
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.refreshLocked(ctx)
}

// refreshLocked mints a fresh token. Caller holds the lock.
func (m *KeyTokenManager) refreshLocked(ctx context.Context) error {
	refreshCtx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	token, expiresAt, err := m.refresh(refreshCtx, m.apiKey)
	if err != nil {
		return err
	}

	m.token = token
	m.expiresAt = expiresAt

	return nil
}

// SetToken stores a token and its expiry, bypassing the refresh function.
func (m *KeyTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.expiresAt = expiresAt
}
