// Package cache wraps an account repository with a Redis read-through cache.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/internal/domain/repository"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
)

const DefaultTTL = 5 * time.Minute

func accountKey(id string) string {
	return "account:" + id
}

type cachedAccount struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func toCached(a *entity.Account) cachedAccount {
	return cachedAccount{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		LastLogin:    a.LastLogin,
	}
}

func (c cachedAccount) toEntity() *entity.Account {
	return &entity.Account{
		ID:           c.ID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		LastLogin:    c.LastLogin,
	}
}

// AccountRepository caches GetByID lookups, which back every authenticated
// request. Misses only fill an absent key, and Update drops the key before
// writing and then stores the committed account, so a slow miss cannot put an
// older copy back. Redis failures degrade to the inner repository and are
// only logged.
type AccountRepository struct {
	inner  repository.AccountRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(inner repository.AccountRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *AccountRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AccountRepository{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return r.inner.Create(ctx, a)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var c cachedAccount
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, accountKey(id), &c)
	if err != nil {
		r.warn(err, id, "account cache read failed")
	}
	if hit {
		return c.toEntity(), nil
	}

	a, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := helpers.RedisSetNXJSON(ctx, r.rdb, accountKey(id), toCached(a), r.ttl); err != nil {
		r.warn(err, id, "account cache write failed")
	}
	return a, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.inner.GetByEmail(ctx, email)
}

func (r *AccountRepository) Update(ctx context.Context, id string, patch entity.AccountPatch) (*entity.Account, error) {
	key := accountKey(id)
	if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
		r.warn(err, id, "account cache invalidation failed")
	}

	a, err := r.inner.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if err := helpers.RedisSetJSON(ctx, r.rdb, key, toCached(a), r.ttl); err != nil {
		r.warn(err, id, "account cache refresh failed")
		if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
			r.warn(err, id, "account cache invalidation failed")
		}
	}
	return a, nil
}

func (r *AccountRepository) warn(err error, id, msg string) {
	if r.logger == nil {
		return
	}
	r.logger.WithError(err).WithField("account_id", id).Warn(msg)
}
