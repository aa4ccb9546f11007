package helpers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
)

type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// NewSessionStore returns a signed cookie store. The cookie is HttpOnly and
// SameSite=Lax so the HTML forms keep working after a cross-site link.
func NewSessionStore(secret []byte, o CookieOptions) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAgeSeconds(o.MaxAge),
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func maxAgeSeconds(d time.Duration) int {
	sec := int(d.Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
