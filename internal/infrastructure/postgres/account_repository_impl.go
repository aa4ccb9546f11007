package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/internal/domain/repository"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

const selectAccount = `
	SELECT id::text, email, password_hash, first_name, last_name, created_at, updated_at, last_login
	FROM accounts
`

// querier is the part of *pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type AccountRepository struct {
	db querier
}

var _ querier = (*pgxpool.Pool)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: pool}
}

// Create inserts a and fills in its id and timestamps. The unique index on
// email decides races; the loser gets repository.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at, updated_at
	`, a.Email, a.PasswordHash, a.FirstName, a.LastName)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE id = $1`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE email = $1`, email))
}

// Update locks the row, applies patch and writes it back in one transaction.
// Any failure before Commit rolls the transaction back.
func (r *AccountRepository) Update(ctx context.Context, id string, patch entity.AccountPatch) (*entity.Account, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAccount(tx.QueryRow(ctx, selectAccount+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	patch.Apply(a, time.Now().UTC())

	if _, err := tx.Exec(ctx, `
		UPDATE accounts
		SET first_name = $1, last_name = $2, last_login = $3, updated_at = $4
		WHERE id = $5
	`, a.FirstName, a.LastName, a.LastLogin, a.UpdatedAt, a.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.CreatedAt, &a.UpdatedAt, &a.LastLogin); err != nil {
		// a malformed uuid can only come from a stale or forged session
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidTextRepresentation {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
