// Package session identifies the browser that owns an edit draft.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id.
const CookieName = "inbox_session"

const sessionKey = "session_id"

// Middleware issues a session cookie on first visit and exposes the id to
// handlers. A cookie that is not a UUID is replaced. With a positive ttl the
// cookie expiry slides forward on every request, in step with the draft TTL;
// otherwise it is a browser-session cookie.
func Middleware(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(CookieName)
		_, err := uuid.Parse(id)
		fresh := err != nil
		if fresh {
			id = uuid.NewString()
		}
		if fresh || ttl > 0 {
			cookie := &fiber.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			}
			if ttl > 0 {
				cookie.Expires = time.Now().Add(ttl)
			}
			c.Cookie(cookie)
		}
		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// ID returns the session id set by Middleware.
func ID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(sessionKey).(string)
	return id, ok && id != ""
}
