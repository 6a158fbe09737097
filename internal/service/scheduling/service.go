// Package scheduling books one-hour slots on a user's public calendar.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
	"ignitecall/internal/service/availability"
	"ignitecall/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrSlotUnavailable wraps store.ErrConflict so callers can match either.
var ErrSlotUnavailable = fmt.Errorf("slot unavailable: %w", store.ErrConflict)

type Service struct {
	users    availability.UserLookup
	calendar store.CalendarRepository
	loc      *time.Location
	now      func() time.Time
}

func NewService(users availability.UserLookup, calendar store.CalendarRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		users:    users,
		calendar: calendar,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock returns a copy of s reading the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

type CreateInput struct {
	Name         string
	Email        string
	Observations string
	Date         string
}

// Create books the hour containing in.Date for username.
func (s *Service) Create(ctx context.Context, username string, in CreateInput) (domain.Scheduling, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 3 {
		return domain.Scheduling{}, validationError("name must have at least 3 letters")
	}
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Scheduling{}, validationError("invalid email")
	}
	if strings.TrimSpace(in.Date) == "" {
		return domain.Scheduling{}, validationError("date not provided")
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(in.Date))
	if err != nil {
		return domain.Scheduling{}, validationError("invalid date")
	}

	at = at.In(s.loc)
	slot := domain.AtHour(at, at.Hour())
	now := s.now()
	if slot.Before(now) {
		return domain.Scheduling{}, validationError("date is in the past")
	}

	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return domain.Scheduling{}, err
	}

	var created domain.Scheduling
	err = s.calendar.InUserTransaction(ctx, user.ID, func(ctx context.Context, tx store.CalendarTx) error {
		free, err := availability.ForDay(ctx, tx, tx, user.ID, slot, now)
		if err != nil {
			return err
		}
		if !slices.Contains(free.AvailableTimes, slot.Hour()) {
			return ErrSlotUnavailable
		}

		row, err := tx.CreateScheduling(ctx, domain.Scheduling{
			UserID:       user.ID,
			Date:         slot.UTC(),
			Name:         name,
			Email:        email,
			Observations: strings.TrimSpace(in.Observations),
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrSlotUnavailable
			}
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return domain.Scheduling{}, err
	}
	return created, nil
}

// ListUpcoming returns userID's bookings from the start of today onwards, up to horizon ahead.
func (s *Service) ListUpcoming(ctx context.Context, userID uuid.UUID, horizon time.Duration) ([]domain.Scheduling, error) {
	if userID == uuid.Nil {
		return nil, validationError("user_id is required")
	}
	from := domain.StartOfDay(s.now().In(s.loc))
	return s.calendar.ListSchedulings(ctx, userID, from, from.Add(horizon))
}
