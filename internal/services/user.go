package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/shared"
)

// Outcome is the result of reconciling one claim set.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// UserService reconciles local users with the identity provider and answers
// questions about the current principal.
type UserService struct {
	users    UserStore
	logger   *log.Logger
	recorder Recorder
}

// NewUserService creates a [UserService]. recorder may be nil.
func NewUserService(users UserStore, logger *log.Logger, recorder Recorder) *UserService {
	return &UserService{users: users, logger: logger, recorder: recorder}
}

// Sync creates or refreshes the local user described by c.
func (s *UserService) Sync(ctx context.Context, c claims.Claims) (Outcome, error) {
	candidate := MapClaims(c)
	email := candidate.Email()

	if strings.TrimSpace(email) == "" {
		s.logger.Warn("claims carry neither email nor subject, skipping sync")
		return s.record(OutcomeUnchanged), nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		created, err := s.users.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to create user: %w", err)
		}
		if created {
			s.logger.Info("user created", "email", email)
			return s.record(OutcomeCreated), nil
		}
		s.logger.Debug("user inserted concurrently, reconciling", "email", email)
		existing = nil
	case err != nil:
		return OutcomeUnchanged, fmt.Errorf("failed to look up user: %w", err)
	}

	if _, ok := c.Get(claims.UpdatedAt); !ok {
		s.logger.Debug("no updated_at claim, keeping stored profile", "email", email)
		return s.record(OutcomeUnchanged), nil
	}

	modified, err := c.UpdatedAt()
	if err != nil {
		s.logger.Warn("cannot parse updated_at claim", "email", email, "error", err)
		return s.record(OutcomeUnchanged), nil
	}

	if existing != nil && !existing.ModifiedBefore(modified) {
		return s.record(OutcomeUnchanged), nil
	}

	updated, err := s.users.UpdateIfNewer(ctx, candidate, modified)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to update user: %w", err)
	}
	if updated {
		s.logger.Info("user updated", "email", email, "updated_at", modified)
		return s.record(OutcomeUpdated), nil
	}

	if _, err := s.users.GetByEmail(ctx, email); errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("user vanished before update, creating it", "email", email)

		created, err := s.users.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to create user: %w", err)
		}
		if created {
			return s.record(OutcomeCreated), nil
		}
	} else if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.record(OutcomeUnchanged), nil
}

// SyncPrincipal reconciles the claims of an identity provider principal. Other
// principals are ignored.
func (s *UserService) SyncPrincipal(ctx context.Context, p *identity.Principal) (Outcome, error) {
	if !s.IsAuthenticated(p) || !p.IsIdP() {
		return OutcomeUnchanged, nil
	}
	return s.Sync(ctx, p.Claims)
}

// AuthenticatedUser projects the user described by the principal's claims without
// touching storage. It reports false when there is no authenticated identity provider user.
func (s *UserService) AuthenticatedUser(p *identity.Principal) (*ReadUser, bool) {
	if !s.IsAuthenticated(p) || !p.IsIdP() {
		return nil, false
	}
	return NewReadUser(MapClaims(p.Claims)), true
}

// ByEmail returns the stored user with the given email.
func (s *UserService) ByEmail(ctx context.Context, email string) (*ReadUser, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return NewReadUser(user), nil
}

// List returns every stored user.
func (s *UserService) List(ctx context.Context) ([]*ReadUser, error) {
	users, err := s.users.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]*ReadUser, 0, len(users))
	for _, u := range users {
		out = append(out, NewReadUser(u))
	}
	return out, nil
}

// IsAuthenticated reports whether p is a real authenticated caller. The anonymous
// sentinel is marked authenticated but never counts.
func (s *UserService) IsAuthenticated(p *identity.Principal) bool {
	return p != nil && p.Authenticated && !p.IsAnonymous()
}

func (s *UserService) record(o Outcome) Outcome {
	if s.recorder != nil {
		s.recorder.RecordSync(o)
	}
	return o
}
