package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// AccountRepository defines the persistence port for accounts.
//
// Create must fail with ErrDuplicateEmail instead of overwriting, even when two
// callers race on the same email. Update must be all-or-nothing.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, id string, patch entity.AccountPatch) (*entity.Account, error)
}
