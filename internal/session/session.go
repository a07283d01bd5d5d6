// Package session provides the starter's default session oracle: a signed
// JWT stored in a cookie. The route guard depends only on the oracle
// interface, so this implementation can be swapped for any external
// session-verification engine.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is the session cookie consulted by the verifier.
const DefaultCookieName = "lk_session"

// CookieVerifier validates session cookies carrying an HS256-signed JWT.
type CookieVerifier struct {
	secret     []byte
	cookieName string
	now        func() time.Time
}

// NewCookieVerifier creates a verifier for the given signing secret.
func NewCookieVerifier(secret []byte, cookieName string) (*CookieVerifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &CookieVerifier{
		secret:     secret,
		cookieName: cookieName,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// IsAuthenticated reports whether the request carries a valid, unexpired
// session token. A missing, malformed, or expired cookie is simply "not
// authenticated" rather than an error; errors are reserved for failures of
// the check itself.
func (v *CookieVerifier) IsAuthenticated(r *http.Request) (bool, error) {
	cookie, err := r.Cookie(v.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return false, nil
		}
		return false, fmt.Errorf("read session cookie: %w", err)
	}

	_, err = v.parse(cookie.Value)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// UserID extracts the subject of a valid session token, or "" when the
// request is unauthenticated.
func (v *CookieVerifier) UserID(r *http.Request) string {
	cookie, err := r.Cookie(v.cookieName)
	if err != nil {
		return ""
	}
	claims, err := v.parse(cookie.Value)
	if err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

func (v *CookieVerifier) parse(raw string) (jwt.Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return token.Claims, nil
}

// Issue mints a session token for the given user, valid for ttl.
func (v *CookieVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is empty")
	}
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// SetCookie writes the session cookie on a response.
func (v *CookieVerifier) SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     v.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on a response.
func (v *CookieVerifier) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     v.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
