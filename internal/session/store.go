package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"lokonnect/internal/models"
	"lokonnect/internal/storage"
)

// Storage keys, kept compatible with the web client's localStorage layout.
const (
	tokenKey = "lk_auth_token"
	userKey  = "lk_auth_user"
)

// Storage is the durable store the session persists to.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store holds the current user session and the auth modal flag. It is
// the single process-wide session record; writes overwrite, never merge.
// Store satisfies the API client's TokenSource.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *zap.Logger

	user      *models.User
	token     string
	modalOpen bool

	// closed once a token is available; replaced on logout
	ready chan struct{}
}

// NewStore builds a session store, rehydrating from durable storage.
// Corrupt persisted state is cleared and the store starts
// unauthenticated; rehydration never fails to the caller.
func NewStore(st Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storage: st,
		logger:  logger,
		ready:   make(chan struct{}),
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	token, err := s.storage.Get(tokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read stored token", zap.Error(err))
		}
		return
	}

	if tokenExpired(token) {
		s.logger.Info("stored session token expired, clearing session")
		s.clearStorage()
		return
	}

	rawUser, err := s.storage.Get(userKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to read stored user", zap.Error(err))
		return
	}

	var user models.User
	if rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			// Fail safe: corrupt auth data means no session.
			s.logger.Warn("stored user data corrupt, clearing session", zap.Error(err))
			s.clearStorage()
			return
		}
	}

	s.token = token
	s.user = &user
	close(s.ready)
}

// tokenExpired reports whether the token is a JWT whose exp claim has
// passed. Opaque tokens are assumed valid; expiry is the server's call.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Now().After(time.Unix(int64(exp), 0))
}

// Login stores the authenticated user and token, persists both, and
// closes the auth modal. A display name is derived from the phone when
// none was supplied.
func (s *Store) Login(token string, user models.User) error {
	if token == "" {
		return errors.New("login requires a token")
	}
	if user.Name == "" {
		user.Name = user.DisplayName()
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(tokenKey, token); err != nil {
		return err
	}
	if err := s.storage.Set(userKey, string(rawUser)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	hadToken := s.token != ""
	s.token = token
	s.user = &user
	s.modalOpen = false
	if !hadToken {
		close(s.ready)
	}
	return nil
}

// Logout clears the session and durable storage.
func (s *Store) Logout() {
	s.clearStorage()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		s.ready = make(chan struct{})
	}
	s.token = ""
	s.user = nil
}

func (s *Store) clearStorage() {
	if err := s.storage.Delete(tokenKey); err != nil {
		s.logger.Warn("failed to clear stored token", zap.Error(err))
	}
	if err := s.storage.Delete(userKey); err != nil {
		s.logger.Warn("failed to clear stored user", zap.Error(err))
	}
}

// User returns the current user, or nil when unauthenticated.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// OpenModal marks the auth modal visible.
func (s *Store) OpenModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = true
}

// CloseModal hides the auth modal.
func (s *Store) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = false
}

// ModalOpen reports the auth modal visibility flag.
func (s *Store) ModalOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modalOpen
}

// Token blocks until a session token is available or ctx is done. The
// caller bounds the wait; an expired wait means the call proceeds as
// unauthenticated and fails, rather than hanging indefinitely.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.token != "" {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	ready := s.ready
	s.mu.RUnlock()

	select {
	case <-ready:
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.token == "" {
			return "", errors.New("session closed before token arrived")
		}
		return s.token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
