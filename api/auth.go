package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/session"
)

// Account is an admin, staff or customer record.
type Account struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phoneNumber,omitempty"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	Status      string `json:"status,omitempty"`
	Rights      string `json:"rightsPrivileges,omitempty"`
}

// Profile converts the account to a session profile.
func (a Account) Profile() *session.Profile {
	return &session.Profile{
		ID:          string(a.ID),
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Designation: a.Designation,
		Department:  a.Department,
		Status:      a.Status,
		Rights:      a.Rights,
	}
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token       string
	Role        permission.Role
	Profile     *session.Profile
	Permissions string
	Message     string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Admin   *Account `json:"admin"`
	Staff   *Account `json:"staff"`
	User    *Account `json:"user"`
}

// Authenticate exchanges credentials for a session. The account object
// present in the response decides the role, checked admin first.
func (c *Client) Authenticate(ctx context.Context, email, password string) (LoginResult, error) {
	var out loginResponse
	err := c.doJSON(ctx, call{
		op:        "authenticate",
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      loginRequest{Email: email, Password: password},
		anonymous: true,
	}, &out)
	if err != nil {
		return LoginResult{}, loginError(err)
	}
	if !out.Success || out.Token == "" {
		if out.Message != "" {
			return LoginResult{}, fmt.Errorf("%w: %s", ErrLoginRejected, out.Message)
		}
		return LoginResult{}, ErrLoginRejected
	}

	var (
		acct *Account
		role permission.Role
	)
	switch {
	case out.Admin != nil:
		acct, role = out.Admin, permission.RoleAdmin
	case out.Staff != nil:
		acct, role = out.Staff, permission.RoleStaff
	case out.User != nil:
		acct, role = out.User, permission.RoleUser
	default:
		return LoginResult{}, ErrNoAccount
	}

	return LoginResult{
		Token:       out.Token,
		Role:        role,
		Profile:     acct.Profile(),
		Permissions: c.roles.Resolve(role, acct.Rights),
		Message:     out.Message,
	}, nil
}

func loginError(err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAccountInactive, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrAccountNotFound, err)
	default:
		return err
	}
}
