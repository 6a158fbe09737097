package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/service/auth"
	"ignitecall/internal/service/availability"
	"ignitecall/internal/service/intervals"
	"ignitecall/internal/service/scheduling"
	"ignitecall/internal/service/users"
	"ignitecall/internal/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, messageResponse{Message: msg})
}

// errorMessages overrides the generic texts used for sentinel errors.
type errorMessages struct {
	notFound string
	conflict string
}

func statusFor(err error, msgs errorMessages) (int, string) {
	var (
		availErr    *availability.ValidationError
		usersErr    *users.ValidationError
		intervalErr *intervals.ValidationError
		schedErr    *scheduling.ValidationError
	)
	switch {
	case errors.As(err, &availErr):
		return http.StatusBadRequest, availErr.Error()
	case errors.As(err, &usersErr):
		return http.StatusBadRequest, usersErr.Error()
	case errors.As(err, &intervalErr):
		return http.StatusBadRequest, intervalErr.Error()
	case errors.As(err, &schedErr):
		return http.StatusBadRequest, schedErr.Error()
	case errors.Is(err, auth.ErrMissingClaim):
		return http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, auth.ErrAccountNotLinked):
		return http.StatusConflict, "This email is already linked to another account."
	case errors.Is(err, store.ErrNotFound):
		if msgs.notFound != "" {
			return http.StatusNotFound, msgs.notFound
		}
		return http.StatusNotFound, "Not found."
	case errors.Is(err, store.ErrConflict):
		if msgs.conflict != "" {
			return http.StatusConflict, msgs.conflict
		}
		return http.StatusConflict, "Conflict."
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) fail(c *gin.Context, log *slog.Logger, err error, msgs errorMessages) {
	status, msg := statusFor(err, msgs)
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", slog.Any("err", err))
	case status == http.StatusBadRequest:
		log.Warn("invalid request", slog.Any("err", err))
	default:
		log.Info("request rejected", slog.Int("status", status), slog.Any("err", err))
	}
	abortMessage(c, status, msg)
}

func (s *Server) handlerLog(c *gin.Context, handler string) *slog.Logger {
	return s.log.With(
		slog.String("handler", handler),
		slog.String("request_id", c.GetString(ctxKeyRequestID)),
	)
}
