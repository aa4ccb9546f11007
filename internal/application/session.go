package application

import "sync"

// HasIdentity exposes the account bound to a session, if any.
type HasIdentity interface {
	AccountID() (string, bool)
}

// SessionContext is the per-connection authentication state the Authenticator
// operates on. An unbound session is anonymous. Bind drops whatever the
// session held before, so a login never inherits earlier session data.
type SessionContext interface {
	HasIdentity
	Bind(accountID string) error
	Clear() error
}

// MemorySession keeps the bound account id in memory. Useful for tests and tools.
type MemorySession struct {
	mu        sync.Mutex
	accountID string
}

var _ SessionContext = (*MemorySession)(nil)

func NewMemorySession() *MemorySession { return &MemorySession{} }

func (s *MemorySession) AccountID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID, s.accountID != ""
}

func (s *MemorySession) Bind(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = accountID
	return nil
}

func (s *MemorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = ""
	return nil
}
