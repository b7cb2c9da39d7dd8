// Package auth gates the dashboard behind a single shared password and a
// signed session cookie.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CookieName is the session cookie set after a successful login.
	CookieName = "auth"

	// SessionTTL is how long a login lasts.
	SessionTTL = 7 * 24 * time.Hour

	bcryptCost = 12
	issuer     = "burnrate"
	subject    = "dashboard"
)

var (
	ErrNoPassword   = errors.New("no dashboard password configured")
	ErrInvalidToken = errors.New("invalid session token")
)

type Config struct {
	// Password is compared in constant time. PasswordHash, a bcrypt hash,
	// takes precedence when both are set.
	Password     string
	PasswordHash string
	// Secret signs session tokens. An empty secret gets a random one, so
	// sessions do not survive a restart.
	Secret string
	// Secure marks the cookie HTTPS-only.
	Secure bool
	TTL    time.Duration
}

// SessionClaims are carried by the session token.
type SessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	password []byte
	hash     []byte
	secret   []byte
	secure   bool
	ttl      time.Duration
	now      func() time.Time
}

func New(cfg Config) (*Authenticator, error) {
	if cfg.Password == "" && cfg.PasswordHash == "" {
		return nil, ErrNoPassword
	}

	a := &Authenticator{
		password: []byte(cfg.Password),
		hash:     []byte(cfg.PasswordHash),
		secret:   []byte(cfg.Secret),
		secure:   cfg.Secure,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	if a.ttl <= 0 {
		a.ttl = SessionTTL
	}
	if len(a.secret) == 0 {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return a, nil
}

// CheckPassword reports whether password unlocks the dashboard.
func (a *Authenticator) CheckPassword(password string) bool {
	if len(a.hash) > 0 {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(a.password, []byte(password)) == 1
}

// IssueToken returns a signed session token and its expiry.
func (a *Authenticator) IssueToken() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := SessionClaims{
		Scope: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// VerifyToken checks the signature, expiry and scope of a session token.
func (a *Authenticator) VerifyToken(token string) error {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Scope != subject {
		return ErrInvalidToken
	}
	return nil
}

// Authenticated reports whether the request carries a valid session.
func (a *Authenticator) Authenticated(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return a.VerifyToken(c.Value) == nil
}

// SessionCookie wraps a token issued by IssueToken.
func (a *Authenticator) SessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearCookie expires the session cookie.
func (a *Authenticator) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// HashPassword returns a bcrypt hash suitable for DASHBOARD_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
