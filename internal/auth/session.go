package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic/m/domain"
	"clinic/m/internal/config"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims is the payload of a session token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session tokens and the cookie carrying them.
type Sessions struct {
	secret []byte
	cookie config.SessionConfig
	now    func() time.Time
}

// NewSessions builds a Sessions signing with secret.
func NewSessions(secret string, cookie config.SessionConfig) *Sessions {
	return &Sessions{secret: []byte(secret), cookie: cookie, now: time.Now}
}

// Issue returns a token for user valid for the session lifetime.
func (s *Sessions) Issue(user domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cookie.Lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies tokenString and returns its claims.
func (s *Sessions) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CookieName is the name of the session cookie.
func (s *Sessions) CookieName() string {
	return s.cookie.CookieName
}

// Cookie wraps token in a cookie carrying the configured security flags.
func (s *Sessions) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cookie.Lifetime.Seconds()),
		Expires:  s.now().Add(s.cookie.Lifetime),
		HttpOnly: s.cookie.HTTPOnly,
		Secure:   s.cookie.Secure,
		SameSite: s.cookie.SameSite,
	}
}

// ExpiredCookie clears the session cookie on the client.
func (s *Sessions) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: s.cookie.HTTPOnly,
		Secure:   s.cookie.Secure,
		SameSite: s.cookie.SameSite,
	}
}
