package storefront

import (
	"context"
	"errors"

	internalaudit "github.com/MrEthical07/storefront/internal/audit"
	"github.com/MrEthical07/storefront/session"
)

type auditErrorCode string

const (
	auditErrInvalidCredentials auditErrorCode = "invalid_credentials"
	auditErrAccountInactive    auditErrorCode = "account_inactive"
	auditErrAccountNotFound    auditErrorCode = "account_not_found"
	auditErrRateLimited        auditErrorCode = "rate_limited"
	auditErrSessionExpired     auditErrorCode = "session_expired"
	auditErrNetwork            auditErrorCode = "network"
	auditErrPersistence        auditErrorCode = "persistence"
	auditErrOrderRejected      auditErrorCode = "order_rejected"
	auditErrInternal           auditErrorCode = "internal_error"
)

// emitAudit records one event for the session st. A nil err is a success.
func (c *Client) emitAudit(ctx context.Context, eventType string, st session.State, err error, metadata map[string]string) {
	if c.audit == nil {
		return
	}

	event := internalaudit.NewEvent(eventType, err == nil)
	event.Actor = customerID(st)
	if st.Authenticated {
		event.Role = st.Role.String()
	}
	event.Error = string(auditCode(err))
	event.Metadata = metadata

	c.audit.Emit(ctx, event)
}

func auditCode(err error) auditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountInactive):
		return auditErrAccountInactive
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrNetwork):
		return auditErrNetwork
	case errors.Is(err, ErrPersistence):
		return auditErrPersistence
	case errors.Is(err, ErrOrderRejected):
		return auditErrOrderRejected
	default:
		return auditErrInternal
	}
}
