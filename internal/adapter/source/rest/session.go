package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mmcdole/lectern/internal/domain"
)

// SignIn authenticates with email and password. The session cookie the
// server sets is kept in the client's jar.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var resp SignInResponse
	if err := c.postJSON(ctx, "/teacher/signin", SignInRequest{Email: email, Password: password}, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.status == http.StatusBadRequest || se.status == http.StatusNotFound) {
			return nil, domain.ErrAuthFailed
		}
		return nil, err
	}
	if resp.Teacher.Email == "" {
		resp.Teacher.Email = email
	}
	return mapTeacher(resp.Teacher), nil
}

// Verify checks the stored session and returns the teacher it belongs to.
func (c *Client) Verify(ctx context.Context) (*domain.AuthResult, error) {
	if !c.jar.HasSession() {
		return nil, domain.ErrNotSignedIn
	}
	var resp VerifyResponse
	if err := c.getJSON(ctx, "/teacher/verify", &resp); err != nil {
		return nil, err
	}
	if !resp.Authenticated || resp.Teacher.Email == "" {
		return nil, domain.ErrAuthFailed
	}
	return mapTeacher(resp.Teacher), nil
}

// SignOut ends the session on the server and forgets the local cookies.
// Local cookies are dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/teacher/logout", nil)
	if clearErr := c.jar.Clear(); clearErr != nil {
		c.logger.Warn("failed to clear session", "error", clearErr)
	}
	if err != nil && !errors.Is(err, domain.ErrAuthFailed) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// notFoundAs maps a 404 response to target
func notFoundAs(err, target error) error {
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return fmt.Errorf("%w: %v", target, err)
	}
	return err
}
