package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-session-auth/internal/domain/repository"
)

// Authenticator drives the session lifecycle on top of the AccountStore.
// A session is either anonymous or bound to exactly one account id.
type Authenticator struct {
	Accounts *AccountStore
	Logger   *logrus.Logger

	now func() time.Time
}

type Option func(*Authenticator)

// WithClock overrides the time source used for last_login.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAuthenticator(accounts *AccountStore, logger *logrus.Logger, opts ...Option) *Authenticator {
	a := &Authenticator{
		Accounts: accounts,
		Logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
}

// ProfileInput carries the editable profile fields. Nil leaves a field as is.
type ProfileInput struct {
	FirstName *string
	LastName  *string
}

// Register creates an account and binds the session to it. The confirmation
// check runs before anything touches the store.
func (a *Authenticator) Register(ctx context.Context, sess SessionContext, in RegisterInput) (*entity.Account, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, ErrPasswordMismatch
	}

	existing, err := a.Accounts.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailAlreadyRegistered
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	acc, err := a.Accounts.Create(ctx, CreateAccountInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return nil, err
	}
	if err := sess.Bind(acc.ID); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	a.logInfo("account registered", acc.ID)
	return acc, nil
}

// Login verifies credentials, records last_login and re-binds the session.
// Unknown email and wrong password are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, sess SessionContext, email, password string) (*entity.Account, error) {
	acc, err := a.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			a.Accounts.VerifyCredential(nil, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !a.Accounts.VerifyCredential(acc, password) {
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	updated, err := a.Accounts.Update(ctx, acc.ID, entity.AccountPatch{LastLogin: &now})
	if err != nil {
		return nil, fmt.Errorf("record last login: %w", err)
	}

	if err := sess.Bind(updated.ID); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	a.logInfo("account logged in", updated.ID)
	return updated, nil
}

func (a *Authenticator) Logout(_ context.Context, sess SessionContext) error {
	id, ok := sess.AccountID()
	if !ok {
		return nil
	}
	if err := sess.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.logInfo("account logged out", id)
	return nil
}

// CurrentIdentity returns the bound account or nil when anonymous. A session
// pointing at an account that no longer exists is cleared.
func (a *Authenticator) CurrentIdentity(ctx context.Context, sess HasIdentity) (*entity.Account, error) {
	id, ok := sess.AccountID()
	if !ok {
		return nil, nil
	}
	acc, err := a.Accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if s, ok := sess.(SessionContext); ok {
				if err := s.Clear(); err != nil && a.Logger != nil {
					a.Logger.WithError(err).WithField("account_id", id).Warn("clear dangling session failed")
				}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return acc, nil
}

func (a *Authenticator) RequireAuthenticated(ctx context.Context, sess HasIdentity) (*entity.Account, error) {
	acc, err := a.CurrentIdentity(ctx, sess)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrUnauthorized
	}
	return acc, nil
}

// UpdateProfile edits the names of the bound account. Failures leave the
// stored account unchanged and surface as ErrUpdateFailed.
func (a *Authenticator) UpdateProfile(ctx context.Context, sess HasIdentity, in ProfileInput) (*entity.Account, error) {
	acc, err := a.RequireAuthenticated(ctx, sess)
	if err != nil {
		return nil, err
	}

	patch := entity.AccountPatch{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
	}
	if patch.IsEmpty() {
		return acc, nil
	}
	return a.Accounts.Update(ctx, acc.ID, patch)
}

func (a *Authenticator) logInfo(msg, accountID string) {
	if a.Logger == nil {
		return
	}
	a.Logger.WithField("account_id", accountID).Info(msg)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
