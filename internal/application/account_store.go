package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-session-auth/internal/domain/repository"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
)

// AccountStore owns account records: it hashes credentials on the way in and
// verifies them on the way out. Persistence is delegated to the repository.
type AccountStore struct {
	Repo   repo.AccountRepository
	Hasher helpers.PasswordHasher
	Logger *logrus.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewAccountStore(repo repo.AccountRepository, hasher helpers.PasswordHasher, logger *logrus.Logger) *AccountStore {
	return &AccountStore{
		Repo:   repo,
		Hasher: hasher,
		Logger: logger,
	}
}

type CreateAccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Create stores a new account with a hashed password. A duplicate email yields
// ErrEmailAlreadyRegistered and leaves the existing account untouched.
func (s *AccountStore) Create(ctx context.Context, in CreateAccountInput) (*entity.Account, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrInvalidAccountInput
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if hash == "" || hash == in.Password {
		return nil, errors.New("hash password: hasher returned an unusable credential")
	}

	a := &entity.Account{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return s.Repo.GetByEmail(ctx, email)
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return s.Repo.GetByID(ctx, id)
}

// Update applies patch atomically. Any failure is reported as ErrUpdateFailed
// joined with the underlying cause.
func (s *AccountStore) Update(ctx context.Context, id string, patch entity.AccountPatch) (*entity.Account, error) {
	a, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", id).Warn("account update failed")
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	return a, nil
}

// VerifyCredential reports whether password matches the account's hash.
// A nil account still pays for one hash comparison so unknown emails take
// about as long as wrong passwords.
func (s *AccountStore) VerifyCredential(a *entity.Account, password string) bool {
	if a == nil || a.PasswordHash == "" {
		s.decoyCompare(password)
		return false
	}
	return s.Hasher.Compare(a.PasswordHash, password)
}

func (s *AccountStore) decoyCompare(password string) {
	s.decoyOnce.Do(func() {
		h, err := s.Hasher.Hash("decoy-credential")
		if err == nil {
			s.decoyHash = h
		}
	})
	if s.decoyHash != "" {
		_ = s.Hasher.Compare(s.decoyHash, password)
	}
}
