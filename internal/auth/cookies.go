package auth

import (
	"net/http"
	"net/url"
	"time"
)

// Cookie names. usuario_id holds the signed identity token and is the only
// one the server trusts; username is a display hint readable by scripts.
const (
	IdentityCookie = "usuario_id"
	DisplayCookie  = "username"
)

// Cookies writes and clears the session cookie pair.
type Cookies struct {
	secure bool
}

// NewCookies creates a cookie writer. secure should be true whenever the
// site is served over HTTPS.
func NewCookies(secure bool) *Cookies {
	return &Cookies{secure: secure}
}

// Set writes both cookies for a freshly issued session.
func (c *Cookies) Set(w http.ResponseWriter, issued *Issued) {
	maxAge := int(time.Until(issued.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	http.SetCookie(w, c.cookie(IdentityCookie, issued.Token, true, maxAge))
	http.SetCookie(w, c.cookie(DisplayCookie, url.QueryEscape(issued.DisplayName), false, maxAge))
}

// Clear expires both cookies.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(IdentityCookie, "", true, -1))
	http.SetCookie(w, c.cookie(DisplayCookie, "", false, -1))
}

func (c *Cookies) cookie(name, value string, httpOnly bool, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// IdentityToken returns the raw token from the usuario_id cookie.
func IdentityToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(IdentityCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// DisplayName returns the decoded username cookie. It is for display only
// and must never be used to identify the user.
func DisplayName(r *http.Request) string {
	cookie, err := r.Cookie(DisplayCookie)
	if err != nil {
		return ""
	}
	name, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return name
}
