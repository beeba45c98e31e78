package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// ErrNotFound is returned when no session exists for the presented ID.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Session is the server-side record referenced by the session cookie. The
// permission set is loaded lazily and cached here for the session lifetime;
// it is only rebuilt when a new session is created.
type Session struct {
	ID          string           `json:"id"`
	Principal   models.Principal `json:"principal"`
	Permissions []string         `json:"permissions,omitempty"`
	PermsLoaded bool             `json:"perms_loaded"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PermissionSet exposes the cached permissions as a set.
func (s *Session) PermissionSet() models.PermissionSet {
	return models.NewPermissionSet(s.Permissions)
}

// Store persists sessions in Redis with an idle TTL refreshed on access.
type Store struct {
	client  *redis.Client
	idleTTL time.Duration
}

// NewStore constructs a session store.
func NewStore(client *redis.Client, idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = 12 * time.Hour
	}
	return &Store{client: client, idleTTL: idleTTL}
}

// Create issues a fresh session with a new random identifier and seeds the
// principal snapshot. Callers must discard any previously presented session
// ID (fixation defense happens at login by destroying it first).
func (s *Store) Create(ctx context.Context, principal models.Principal) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Principal: principal,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session by ID and refreshes its idle TTL.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := s.client.Expire(ctx, keyPrefix+id, s.idleTTL).Err(); err != nil {
		return nil, fmt.Errorf("refresh session ttl: %w", err)
	}
	return &sess, nil
}

// SavePermissions caches the permission keys on the session record.
func (s *Store) SavePermissions(ctx context.Context, id string, keys []string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Permissions = keys
	sess.PermsLoaded = true
	return s.save(ctx, sess)
}

// Destroy removes a session. Missing sessions are not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, raw, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
