package middleware

import (
	"net"
	"net/http"
	"strings"

	"timetracker/internal/timetracker"
)

// SessionHeader and SessionCookie carry the caller's session key
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "sessionid"
)

// ClientIP returns the first X-Forwarded-For hop, or the remote address
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// SessionKey returns the session header, falling back to the session cookie
func SessionKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(SessionHeader)); v != "" {
		return v
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// ActorFromRequest builds the audit actor of a request
func ActorFromRequest(r *http.Request) timetracker.Actor {
	actor := timetracker.Actor{
		IP:         ClientIP(r),
		UserAgent:  r.UserAgent(),
		SessionKey: SessionKey(r),
	}
	if name, ok := GetUser(r); ok {
		actor.UserID = &name
	}
	return actor
}
