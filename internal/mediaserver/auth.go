package mediaserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/cinelist/internal/adapter"
	"golang.org/x/term"
)

// ErrEmptyToken is returned when the user enters nothing at the prompt
var ErrEmptyToken = errors.New("no token entered")

// TokenVerifier checks a token against the remote API
type TokenVerifier func(ctx context.Context, token string) error

// TokenFlow prompts for an API read-access token and verifies it before use.
type TokenFlow struct {
	out        io.Writer
	readSecret func() (string, error)
	verify     TokenVerifier
	logger     *slog.Logger
}

// NewTokenFlow creates a flow that reads the token from the terminal without
// echo and verifies it against api.
func NewTokenFlow(api adapter.APIConfig, logger *slog.Logger) *TokenFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenFlow{
		out:        os.Stdout,
		readSecret: readTerminalSecret,
		verify: func(ctx context.Context, token string) error {
			return newClient(api, token, logger).VerifyToken(ctx)
		},
		logger: logger,
	}
}

// Run executes the prompt and returns a verified token.
func (f *TokenFlow) Run(ctx context.Context) (string, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "TMDB Authentication")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(f.out, "Paste your API read access token from https://www.themoviedb.org/settings/api")
	fmt.Fprint(f.out, "Token: ")

	token, err := f.readSecret()
	fmt.Fprintln(f.out) // Newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	fmt.Fprintln(f.out, "Verifying...")
	if err := f.verify(ctx, token); err != nil {
		f.logger.Warn("token verification failed", "error", err)
		return "", fmt.Errorf("token verification failed: %w", err)
	}

	fmt.Fprintln(f.out, "Authentication successful!")
	return token, nil
}

// readTerminalSecret reads a line without echo, falling back to a plain read
// when stdin is not a terminal.
func readTerminalSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
