package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/server/auth"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// sessionCookieName is the cookie the session token travels in.
const sessionCookieName = "_token"

// claimsContextKey is the echo context key holding the authenticated claims.
const claimsContextKey = "claims"

func (s *HTTPServer) sessionClaims(c echo.Context) *auth.Claims {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.ParseSessionToken(cookie.Value, s.secretKey)
	if err != nil {
		return nil
	}
	return claims
}

// requireAuth rejects requests without a valid session cookie.
func (s *HTTPServer) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := s.sessionClaims(c)
		if claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// identifyUser attaches the claims when a valid session cookie is present
// but lets anonymous requests through.
func (s *HTTPServer) identifyUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims := s.sessionClaims(c); claims != nil {
			c.Set(claimsContextKey, claims)
		}
		return next(c)
	}
}

func currentClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsContextKey).(*auth.Claims)
	return claims
}

// rateLimitMiddleware enforces a per-IP token bucket on the auth routes, so
// credential and token guessing stays slow.
func (s *HTTPServer) rateLimitMiddleware() echo.MiddlewareFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(s.authRateLimit), s.authRateBurst)
			limiters[ip] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiterFor(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

func (s *HTTPServer) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *HTTPServer) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
