// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/shared"
)

// FakeAuthenticator is a test double for [identity.Authenticator].
//
// Codes map to the claim sets Exchange returns; unknown codes fail with
// [shared.ErrAuthFailed].
type FakeAuthenticator struct {
	AuthURL string
	Codes   map[string]claims.Claims

	mu        sync.Mutex
	verifiers []string
}

var _ identity.Authenticator = (*FakeAuthenticator)(nil)

func (f *FakeAuthenticator) AuthCodeURL(state, verifier string) string {
	base := f.AuthURL
	if base == "" {
		base = "https://idp.example.com/authorize"
	}
	return fmt.Sprintf("%s?state=%s", base, url.QueryEscape(state))
}

func (f *FakeAuthenticator) Exchange(_ context.Context, code, verifier string) (claims.Claims, error) {
	f.mu.Lock()
	f.verifiers = append(f.verifiers, verifier)
	f.mu.Unlock()

	c, ok := f.Codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: unknown code %q", shared.ErrAuthFailed, code)
	}
	return c, nil
}

// Verifiers returns the PKCE verifiers passed to Exchange so far.
func (f *FakeAuthenticator) Verifiers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.verifiers...)
}

// OpenTestDB opens an in-memory database with migrations applied and closes it
// when the test ends.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
