package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"polychat/internal/common"
)

const (
	// SessionIDKey is the gin context key holding the caller's session id.
	SessionIDKey = "session_id"

	// SessionCookieName carries the signed session token between requests.
	SessionCookieName = "polychat_session"

	sessionCookieMaxAge = 30 * 24 * time.Hour
)

// SessionCookie resolves the signed session cookie, if any, and exposes the
// session id to handlers. Requests without a valid cookie pass through with
// no id set; handlers decide whether that is an error.
func SessionCookie(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookieName); err == nil {
			if sid, err := parseSessionToken(raw, secret); err == nil {
				c.Set(SessionIDKey, sid)
			}
		}
		c.Next()
	}
}

// SessionID returns the session id attached by SessionCookie.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(SessionIDKey)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok && sid != ""
}

// IssueSession mints a new session id, signs it into the cookie, and makes it
// visible to the rest of the current request.
func IssueSession(c *gin.Context, secret string) (string, error) {
	sid, err := common.NewSessionID()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	c.SetCookie(SessionCookieName, signed, int(sessionCookieMaxAge.Seconds()), "/", "", false, true)
	c.Set(SessionIDKey, sid)
	return sid, nil
}

func parseSessionToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid session claims")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("session token missing sid")
	}
	return sid, nil
}
