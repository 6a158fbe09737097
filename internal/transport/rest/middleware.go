package rest

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

const (
	requestIDHeader     = "X-Request-Id"
	adapterSecretHeader = "X-Adapter-Secret"

	ctxKeyRequestID = "request_id"
	ctxKeySession   = "session"
	ctxKeyUser      = "user"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = newRequestID()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func accessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			slog.String("request_id", c.GetString(ctxKeyRequestID)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Int("bytes", c.Writer.Size()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

// defaultRequestTimeout bounds handlers whose request context carries no deadline.
func defaultRequestTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireSession resolves the session cookie (or bearer token) to a user.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			abortMessage(c, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		session, user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.clearCookie(c, sessionCookie)
				abortMessage(c, http.StatusUnauthorized, "Unauthorized.")
				return
			}
			s.log.Error("session lookup failed", slog.Any("err", err))
			abortMessage(c, http.StatusInternalServerError, "internal error")
			return
		}

		s.setSessionCookie(c, session)
		c.Set(ctxKeySession, session)
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(sessionCookie); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func currentUser(c *gin.Context) domain.User {
	u, _ := c.MustGet(ctxKeyUser).(domain.User)
	return u
}

func currentSession(c *gin.Context) domain.Session {
	sess, _ := c.MustGet(ctxKeySession).(domain.Session)
	return sess
}

func (s *Server) requireAdapterSecret() gin.HandlerFunc {
	want := []byte(s.adapterSecret)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(adapterSecretHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			abortMessage(c, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		c.Next()
	}
}

func (s *Server) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.cookieSecure, true)
}

func (s *Server) setSessionCookie(c *gin.Context, session domain.Session) {
	maxAge := int(time.Until(session.Expires).Seconds())
	if maxAge <= 0 {
		return
	}
	s.setCookie(c, sessionCookie, session.SessionToken, maxAge)
}

func (s *Server) clearCookie(c *gin.Context, name string) {
	s.setCookie(c, name, "", -1)
}
