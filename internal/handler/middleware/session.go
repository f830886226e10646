package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"seatwise/internal/handler/httperr"
	"seatwise/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

const (
	ctxSessionIDKey   = "session_id"
	sessionCookieName = "seatwise_session"
)

// SessionMiddleware attaches an opaque browse-session identifier to every
// request. A valid token in the cookie or Authorization header is reused; an
// absent or broken one is silently replaced with a fresh session, since a
// browsing session carries no user identity worth challenging for.
type SessionMiddleware struct {
	manager *session.Manager
}

func NewSessionMiddleware(manager *session.Manager) *SessionMiddleware {
	return &SessionMiddleware{manager: manager}
}

func (m *SessionMiddleware) EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)

		if token != "" {
			sessionID, err := m.manager.Verify(token)
			if err == nil {
				c.Set(ctxSessionIDKey, sessionID)
				c.Next()
				return
			}
			slog.Debug("session token rejected, issuing a new one", "error", err.Error())
		}

		sessionID, signed, err := m.manager.Issue()
		if err != nil {
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
			return
		}
		// Cookie lifetime tracks token validity so a live cookie never carries
		// an expired token.
		c.SetCookie(sessionCookieName, signed, int(m.manager.TTL().Seconds()), "/", "", false, true)
		c.Set(ctxSessionIDKey, sessionID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetSessionID(c *gin.Context) string {
	if v, exists := c.Get(ctxSessionIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
