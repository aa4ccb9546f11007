package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-session-auth/internal/application"
)

const sessionAccountKey = "account_id"

// GinSession adapts a gin-contrib/sessions session to application.SessionContext.
// Every mutation is saved immediately so the cookie is written before the
// handler renders.
type GinSession struct {
	s sessions.Session
}

var _ application.SessionContext = (*GinSession)(nil)

// Session returns the request's session. The sessions middleware must be installed.
func Session(c *gin.Context) *GinSession {
	return &GinSession{s: sessions.Default(c)}
}

func (g *GinSession) AccountID() (string, bool) {
	id, ok := g.s.Get(sessionAccountKey).(string)
	return id, ok && id != ""
}

func (g *GinSession) Bind(accountID string) error {
	g.s.Clear()
	g.s.Set(sessionAccountKey, accountID)
	return g.s.Save()
}

func (g *GinSession) Clear() error {
	g.s.Clear()
	return g.s.Save()
}
