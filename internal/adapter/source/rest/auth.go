package rest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mmcdole/lectern/internal/domain"
)

// Authenticator signs a teacher in with email and password
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error)
}

// AuthFlow implements domain.AuthFlow with an email/password prompt
type AuthFlow struct {
	sessions     Authenticator
	defaultEmail string
	logger       *slog.Logger

	// SkipPassword is set for backends that have nothing to check it against
	SkipPassword bool

	in           io.Reader
	out          io.Writer
	readPassword func() ([]byte, error)
}

// NewAuthFlow creates a sign-in flow that prompts on the terminal.
// defaultEmail is offered when the teacher just presses enter.
func NewAuthFlow(sessions Authenticator, defaultEmail string, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{
		sessions:     sessions,
		defaultEmail: defaultEmail,
		logger:       logger,
		in:           os.Stdin,
		out:          os.Stdout,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

// Run prompts for credentials and signs in.
func (f *AuthFlow) Run(ctx context.Context) (*domain.AuthResult, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Teacher Sign In")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━━")

	reader := bufio.NewReader(f.in)
	if f.defaultEmail != "" {
		fmt.Fprintf(f.out, "Email [%s]: ", f.defaultEmail)
	} else {
		fmt.Fprint(f.out, "Email: ")
	}
	email, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = f.defaultEmail
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	var password []byte
	if !f.SkipPassword {
		// Hidden input
		fmt.Fprint(f.out, "Password: ")
		password, err = f.readPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(f.out)
	}

	fmt.Fprintln(f.out, "Signing in...")
	result, err := f.sessions.SignIn(ctx, email, string(password))
	if err != nil {
		f.logger.Error("sign in failed", "email", email, "error", err)
		return nil, err
	}

	fmt.Fprintf(f.out, "Signed in as %s\n", result.Email)
	return result, nil
}
