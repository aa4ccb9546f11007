package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-session-auth/internal/domain/repository"
	"github.com/oksasatya/go-session-auth/internal/infrastructure/memory"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
)

type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Minute)
	return c.cur
}

// flakyRepo fails every Update when failUpdates is set.
type flakyRepo struct {
	*memory.AccountRepository
	failUpdates bool
}

func (r *flakyRepo) Update(ctx context.Context, id string, p entity.AccountPatch) (*entity.Account, error) {
	if r.failUpdates {
		return nil, errors.New("connection reset")
	}
	return r.AccountRepository.Update(ctx, id, p)
}

func newTestAuth(t *testing.T, opts ...Option) (*Authenticator, *memory.AccountRepository) {
	t.Helper()
	r := memory.NewAccountRepository()
	store := NewAccountStore(r, helpers.NewBcryptHasher(4), nil)
	return NewAuthenticator(store, nil, opts...), r
}

func register(t *testing.T, a *Authenticator, email, pw string) (*entity.Account, *MemorySession) {
	t.Helper()
	sess := NewMemorySession()
	acc, err := a.Register(context.Background(), sess, RegisterInput{Email: email, Password: pw, PasswordConfirmation: pw})
	require.NoError(t, err)
	return acc, sess
}

func TestRegister_BindsSessionAndPersists(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)

	acc, sess := register(t, a, "new@x.io", "pw-1234")

	cur, err := a.CurrentIdentity(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "new@x.io", cur.Email)
	assert.Equal(t, acc.ID, cur.ID)

	found, err := a.Accounts.FindByEmail(ctx, "new@x.io")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)
	assert.NotEqual(t, "pw-1234", found.PasswordHash)
	assert.NotEmpty(t, found.PasswordHash)
	assert.Nil(t, found.LastLogin)
}

func TestRegister_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		seed     bool
		in       RegisterInput
		wantErr  error
		wantRows int
	}{
		{
			name:    "mismatched confirmation on unused email",
			in:      RegisterInput{Email: "m@x.io", Password: "a", PasswordConfirmation: "b"},
			wantErr: ErrPasswordMismatch,
		},
		{
			name:     "mismatch is reported before duplicate",
			seed:     true,
			in:       RegisterInput{Email: "taken@x.io", Password: "a", PasswordConfirmation: "b"},
			wantErr:  ErrPasswordMismatch,
			wantRows: 1,
		},
		{
			name:     "duplicate email",
			seed:     true,
			in:       RegisterInput{Email: "taken@x.io", Password: "other", PasswordConfirmation: "other"},
			wantErr:  ErrEmailAlreadyRegistered,
			wantRows: 1,
		},
		{
			name:    "empty password",
			in:      RegisterInput{Email: "e@x.io"},
			wantErr: ErrInvalidAccountInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, r := newTestAuth(t)
			if tt.seed {
				register(t, a, "taken@x.io", "orig")
			}
			sess := NewMemorySession()
			acc, err := a.Register(ctx, sess, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, acc)
			assert.Equal(t, tt.wantRows, r.Len())

			_, bound := sess.AccountID()
			assert.False(t, bound)
		})
	}
}

func TestRegister_PasswordLongerThan72Bytes(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)

	pw := strings.Repeat("p", 73)
	acc, sess := register(t, a, "long@x.io", pw)
	id, ok := sess.AccountID()
	require.True(t, ok)
	assert.Equal(t, acc.ID, id)

	_, err := a.Login(ctx, NewMemorySession(), "long@x.io", pw)
	assert.NoError(t, err)
	_, err = a.Login(ctx, NewMemorySession(), "long@x.io", pw[:72])
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateKeepsOriginalCredential(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	register(t, a, "dup@x.io", "first")

	_, err := a.Register(ctx, NewMemorySession(), RegisterInput{Email: "dup@x.io", Password: "second", PasswordConfirmation: "second"})
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	_, err = a.Login(ctx, NewMemorySession(), "dup@x.io", "first")
	assert.NoError(t, err)
	_, err = a.Login(ctx, NewMemorySession(), "dup@x.io", "second")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InvalidCredentialsLeaveSessionAnonymous(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	register(t, a, "bob@x.io", "right")

	for _, tc := range []struct{ email, pw string }{
		{"bob@x.io", "wrong"},
		{"nobody@x.io", "right"},
		{"BOB@x.io", "right"},
	} {
		sess := NewMemorySession()
		acc, err := a.Login(ctx, sess, tc.email, tc.pw)
		assert.Nil(t, acc)
		assert.Same(t, ErrInvalidCredentials, err, "%s/%s", tc.email, tc.pw)

		cur, err := a.CurrentIdentity(ctx, sess)
		require.NoError(t, err)
		assert.Nil(t, cur)
	}
}

func TestLogin_RebindsExistingSession(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	first, sess := register(t, a, "one@x.io", "pw")
	second, _ := register(t, a, "two@x.io", "pw")

	acc, err := a.Login(ctx, sess, "two@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, second.ID, acc.ID)

	id, ok := sess.AccountID()
	require.True(t, ok)
	assert.Equal(t, second.ID, id)
	assert.NotEqual(t, first.ID, id)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	register(t, a, "out@x.io", "pw")

	sess := NewMemorySession()
	_, err := a.Login(ctx, sess, "out@x.io", "pw")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, sess))
	cur, err := a.CurrentIdentity(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, cur)

	_, err = a.RequireAuthenticated(ctx, sess)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.NoError(t, a.Logout(ctx, sess), "logout when anonymous is a no-op")
}

func TestCurrentIdentity_ClearsDanglingSession(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)

	sess := NewMemorySession()
	require.NoError(t, sess.Bind("does-not-exist"))

	cur, err := a.CurrentIdentity(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, cur)
	_, ok := sess.AccountID()
	assert.False(t, ok)
}

type stuckSession struct {
	*MemorySession
}

func (stuckSession) Clear() error { return errors.New("cookie too large") }

func TestCurrentIdentity_LogsFailedClear(t *testing.T) {
	ctx := context.Background()
	logger, hook := logtest.NewNullLogger()
	store := NewAccountStore(memory.NewAccountRepository(), helpers.NewBcryptHasher(4), nil)
	a := NewAuthenticator(store, logger)

	sess := stuckSession{NewMemorySession()}
	require.NoError(t, sess.Bind("gone"))

	cur, err := a.CurrentIdentity(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, cur)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "clear dangling session failed", entry.Message)
	assert.Equal(t, "gone", entry.Data["account_id"])
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	a, r := newTestAuth(t)
	acc, sess := register(t, a, "p@x.io", "pw")

	first, last := "  Pat ", "Lee"
	updated, err := a.UpdateProfile(ctx, sess, ProfileInput{FirstName: &first, LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Pat", updated.FirstName)
	assert.Equal(t, "Lee", updated.LastName)

	onlyLast := "Kim"
	updated, err = a.UpdateProfile(ctx, sess, ProfileInput{LastName: &onlyLast})
	require.NoError(t, err)
	assert.Equal(t, "Pat", updated.FirstName)
	assert.Equal(t, "Kim", updated.LastName)

	stored, err := r.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim", stored.LastName)
}

func TestUpdateProfile_AnonymousLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	a, r := newTestAuth(t)
	acc, _ := register(t, a, "anon@x.io", "pw")
	before, err := r.GetByID(ctx, acc.ID)
	require.NoError(t, err)

	name := "Mallory"
	_, err = a.UpdateProfile(ctx, NewMemorySession(), ProfileInput{FirstName: &name})
	assert.ErrorIs(t, err, ErrUnauthorized)

	after, err := r.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, r.Len())
}

func TestUpdateProfile_StoreFailure(t *testing.T) {
	ctx := context.Background()
	r := &flakyRepo{AccountRepository: memory.NewAccountRepository()}
	a := NewAuthenticator(NewAccountStore(r, helpers.NewBcryptHasher(4), nil), nil)

	acc, sess := register(t, a, "f@x.io", "pw")
	r.failUpdates = true

	name := "Frank"
	_, err := a.UpdateProfile(ctx, sess, ProfileInput{FirstName: &name})
	assert.ErrorIs(t, err, ErrUpdateFailed)

	stored, err := r.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.FirstName)
}

func TestAliceScenario(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{cur: time.Now().UTC().Add(time.Hour)}
	a, _ := newTestAuth(t, WithClock(clock.Now))

	registered, sess := register(t, a, "alice@example.com", "secret123")
	id, ok := sess.AccountID()
	require.True(t, ok)
	assert.Equal(t, registered.ID, id)

	first, err := a.Login(ctx, sess, "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, first.LastLogin)
	assert.False(t, first.LastLogin.Before(registered.CreatedAt))

	second, err := a.Login(ctx, sess, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, second.LastLogin.After(*first.LastLogin))

	_, err = a.Login(ctx, sess, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := a.Accounts.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(*second.LastLogin))
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	a, r := newTestAuth(t)

	for _, n := range []int{2, 16} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			email := fmt.Sprintf("race-%d@x.io", n)
			errs := make([]error, n)

			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = a.Register(ctx, NewMemorySession(), RegisterInput{Email: email, Password: "pw", PasswordConfirmation: "pw"})
				}(i)
			}
			close(start)
			wg.Wait()

			var ok, dup int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, ErrEmailAlreadyRegistered):
					dup++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, n-1, dup)

			_, err := r.GetByEmail(ctx, email)
			assert.NoError(t, err)
		})
	}
}

func TestAccountStore_VerifyCredential(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(memory.NewAccountRepository(), helpers.NewBcryptHasher(4), nil)

	acc, err := store.Create(ctx, CreateAccountInput{Email: "v@x.io", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, store.VerifyCredential(acc, "pw"))
	assert.False(t, store.VerifyCredential(acc, "PW"))
	assert.False(t, store.VerifyCredential(nil, "pw"))
	assert.False(t, store.VerifyCredential(&entity.Account{}, ""))

	_, err = store.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
