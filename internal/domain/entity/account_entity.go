package entity

import (
	"time"
)

// Account is the aggregate root for the identity domain.
// PasswordHash holds a bcrypt hash, never the plaintext password.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// DisplayName returns "First Last" when any name part is set, otherwise the email.
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	default:
		return a.Email
	}
}

// Clone returns a deep copy so callers never share LastLogin with the store.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// AccountPatch lists the mutable fields of an Account. Nil fields are left as is.
type AccountPatch struct {
	FirstName *string
	LastName  *string
	LastLogin *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.LastLogin == nil
}

// Apply writes the patch onto a and bumps UpdatedAt.
func (p AccountPatch) Apply(a *Account, now time.Time) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.LastLogin != nil {
		t := *p.LastLogin
		a.LastLogin = &t
	}
	a.UpdatedAt = now
}
