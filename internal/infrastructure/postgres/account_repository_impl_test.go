package postgres

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/internal/domain/repository"
)

// testPool connects to TEST_DATABASE_URL and migrates it. Tests skip when unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, RunMigrations(dsn, logger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.test"
}

func TestAccountRepository_Postgres_CRUD(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	r := NewAccountRepository(pool)

	email := uniqueEmail("crud")
	a := &entity.Account{Email: email, PasswordHash: "$2a$04$hash", FirstName: "Ann"}
	require.NoError(t, r.Create(ctx, a))
	require.NotEmpty(t, a.ID)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, a.ID) })

	got, err := r.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Nil(t, got.LastLogin)

	err = r.Create(ctx, &entity.Account{Email: email, PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	now := time.Now().UTC().Truncate(time.Microsecond)
	last := "Archer"
	updated, err := r.Update(ctx, a.ID, entity.AccountPatch{LastName: &last, LastLogin: &now})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "Archer", updated.LastName)

	got, err = r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, now.Equal(*got.LastLogin))

	_, err = r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.Update(ctx, uuid.NewString(), entity.AccountPatch{LastName: &last})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_Postgres_ConcurrentCreate(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	r := NewAccountRepository(pool)
	email := uniqueEmail("race")
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM accounts WHERE email = $1`, email) })

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Create(ctx, &entity.Account{Email: email, PasswordHash: "h"})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch err {
		case nil:
			ok++
		case repository.ErrDuplicateEmail:
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestAccountRepository_Postgres_UpdateRollsBack(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	r := NewAccountRepository(pool)

	a := &entity.Account{Email: uniqueEmail("rollback"), PasswordHash: "$2a$04$hash", FirstName: "Ann", LastName: "Lee"}
	require.NoError(t, r.Create(ctx, a))
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, a.ID) })

	t.Run("write rejected after lock", func(t *testing.T) {
		// text columns refuse NUL, so the UPDATE fails once the row is locked
		bad := "An\x00n"
		now := time.Now().UTC()
		_, err := r.Update(ctx, a.ID, entity.AccountPatch{FirstName: &bad, LastLogin: &now})
		require.Error(t, err)

		got, err := r.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.FirstName)
		assert.Nil(t, got.LastLogin)
	})

	t.Run("context ends while row is locked elsewhere", func(t *testing.T) {
		holder, err := pool.Begin(ctx)
		require.NoError(t, err)
		_, err = holder.Exec(ctx, `SELECT 1 FROM accounts WHERE id = $1 FOR UPDATE`, a.ID)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		last := "Blocked"
		_, err = r.Update(short, a.ID, entity.AccountPatch{LastName: &last})
		require.Error(t, err)
		require.NoError(t, holder.Rollback(ctx))

		got, err := r.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lee", got.LastName)

		last = "Free"
		updated, err := r.Update(ctx, a.ID, entity.AccountPatch{LastName: &last})
		require.NoError(t, err)
		assert.Equal(t, "Free", updated.LastName)
	})
}
