package permission

import (
	"errors"
	"sync"
)

// RoleManager holds the permission tag each role falls back to when the
// API omits one, and can be frozen once configured.
type RoleManager struct {
	mu       sync.RWMutex
	defaults map[Role]string
	frozen   bool
}

// NewRoleManager returns a manager seeded with the API's built-in fallbacks:
// ADMIN, BASIC_STAFF and BASIC_USER.
func NewRoleManager() *RoleManager {
	return &RoleManager{
		defaults: map[Role]string{
			RoleAdmin: "ADMIN",
			RoleStaff: "BASIC_STAFF",
			RoleUser:  "BASIC_USER",
		},
	}
}

// SetDefault overrides the fallback tag for role.
func (rm *RoleManager) SetDefault(role Role, tag string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return errors.New("role manager frozen")
	}
	if !role.Valid() {
		return ErrUnknownRole
	}
	if tag == "" {
		return errors.New("permission tag empty")
	}
	rm.defaults[role] = tag
	return nil
}

// Resolve returns tag when it is non-empty and the role's fallback otherwise.
func (rm *RoleManager) Resolve(role Role, tag string) string {
	if tag != "" {
		return tag
	}
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.defaults[role]
}

/*
====================================
FREEZE
*/

// Freeze rejects further SetDefault calls.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}
