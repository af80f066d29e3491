package session

import (
	"context"
	"fmt"

	"github.com/MrEthical07/storefront/kv"
	"github.com/MrEthical07/storefront/permission"
)

// Storage keys, relative to the storage prefix.
const (
	KeyToken       = "session.token"
	KeyProfile     = "session.profile"
	KeyRole        = "session.role"
	KeyPermissions = "session.permissions"
)

// Record is the persisted form of an authenticated session.
type Record struct {
	Token       string
	Profile     *Profile
	Role        permission.Role
	Permissions string
}

// Store reads and writes the session keys.
type Store struct {
	storage kv.Storage
}

// NewStore returns a Store over storage.
func NewStore(storage kv.Storage) *Store {
	return &Store{storage: storage}
}

// Keys returns the keys owned by the session.
func (s *Store) Keys() []string {
	return []string{KeyToken, KeyProfile, KeyRole, KeyPermissions}
}

// Save writes all four keys in one write.
func (s *Store) Save(ctx context.Context, rec Record) error {
	profile, err := EncodeProfile(rec.Profile)
	if err != nil {
		return err
	}
	return s.storage.SetMany(ctx, map[string]string{
		KeyToken:       rec.Token,
		KeyProfile:     profile,
		KeyRole:        rec.Role.String(),
		KeyPermissions: rec.Permissions,
	})
}

// Load reads the persisted session. ok is false when no complete record
// exists. A record that exists but cannot be decoded reports ErrCorruptRecord.
func (s *Store) Load(ctx context.Context) (rec Record, ok bool, err error) {
	token, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil || !ok || token == "" {
		return Record{}, false, err
	}
	rawProfile, ok, err := s.storage.Get(ctx, KeyProfile)
	if err != nil || !ok {
		return Record{}, false, err
	}
	rawRole, ok, err := s.storage.Get(ctx, KeyRole)
	if err != nil || !ok {
		return Record{}, false, err
	}
	perms, _, err := s.storage.Get(ctx, KeyPermissions)
	if err != nil {
		return Record{}, false, err
	}

	profile, err := DecodeProfile(rawProfile)
	if err != nil {
		return Record{}, false, err
	}
	role, err := permission.ParseRole(rawRole)
	if err != nil || !role.Valid() {
		return Record{}, false, fmt.Errorf("%w: role %q", ErrCorruptRecord, rawRole)
	}

	return Record{
		Token:       token,
		Profile:     profile,
		Role:        role,
		Permissions: perms,
	}, true, nil
}

// Clear deletes the session keys together with extra in one call.
func (s *Store) Clear(ctx context.Context, extra ...string) error {
	keys := append(s.Keys(), extra...)
	return s.storage.Delete(ctx, keys...)
}
