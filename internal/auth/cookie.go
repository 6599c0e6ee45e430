package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth_token"

// CookieManager sets and clears the session cookie. Attributes are fixed at
// construction.
type CookieManager struct {
	secure bool
	ttl    time.Duration
}

func NewCookieManager(secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{secure: secure, ttl: ttl}
}

// Attach sets the session cookie to token with a lifetime equal to the
// token TTL.
func (m *CookieManager) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(token, int(m.ttl.Seconds())))
}

// Clear overwrites the session cookie with an empty value that expires
// immediately.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	// MaxAge < 0 is rendered as Max-Age=0
	http.SetCookie(w, m.cookie("", -1))
}

func (m *CookieManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the session token, or "" when the cookie is
// missing or empty.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
