// Package auth verifies the host's session token and rate-limits API callers.
// The calculator does not register or log in users; the embedding host issues
// an HS256 token and the calculator only checks it.
package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type contextKey string

const ownerKey contextKey = "owner"

// CookieName is the cookie the host sets alongside the Authorization header.
const CookieName = "session_token"

type Authenv struct {
	JWTkey []byte
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.RWMutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// Rate limiting middleware
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !i.getLimiter(ip).Allow() {
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Enabled reports whether tokens are checked at all.
func (env *Authenv) Enabled() bool {
	return len(env.JWTkey) > 0
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Owner validates tokenString and returns its "login" claim.
func (env *Authenv) Owner(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return "", errors.New("token is not valid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims")
	}
	login, ok := claims["login"].(string)
	if !ok || login == "" {
		return "", errors.New("token has no login")
	}
	return login, nil
}

// AuthMiddleware rejects requests without a valid token and stores the token
// owner in the request context. With no key configured it lets every request
// through.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !env.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		tokenString := tokenFrom(r)
		if tokenString == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		login, err := env.Owner(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("token rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), login)))
	})
}

// Sign issues a token the middleware accepts. Hosts normally do this
// themselves; the CLI and tests use it.
func (env *Authenv) Sign(login string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": login,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	s, err := token.SignedString(env.JWTkey)
	return s, errors.Wrap(err, "sign token")
}

func WithOwner(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, ownerKey, login)
}

func OwnerFrom(ctx context.Context) string {
	login, _ := ctx.Value(ownerKey).(string)
	return login
}

// Scope prefixes code with the request owner so that hosts sharing one
// calculator never see each other's sessions.
func Scope(ctx context.Context, code string) string {
	if owner := OwnerFrom(ctx); owner != "" {
		return owner + "/" + code
	}
	return code
}
