// Package availability computes which hourly slots of a user's weekly window
// are still free on a given day.
package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
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

type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// IntervalLookup returns store.ErrNotFound when the weekday has no window.
type IntervalLookup interface {
	FindInterval(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error)
}

type IntervalLister interface {
	ListIntervals(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error)
}

// IntervalStore is what the Calculator needs for both single-day and monthly queries.
type IntervalStore interface {
	IntervalLookup
	IntervalLister
}

type BookingLookup interface {
	ListSchedulings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error)
}

type Result struct {
	PossibleTimes  []int
	AvailableTimes []int
}

func emptyResult() Result {
	return Result{PossibleTimes: []int{}, AvailableTimes: []int{}}
}

type Calculator struct {
	users     UserLookup
	intervals IntervalStore
	bookings  BookingLookup
	loc       *time.Location
	now       func() time.Time
}

// NewCalculator interprets date-only input in loc (UTC when nil).
func NewCalculator(users UserLookup, intervals IntervalStore, bookings BookingLookup, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{
		users:     users,
		intervals: intervals,
		bookings:  bookings,
		loc:       loc,
		now:       time.Now,
	}
}

// WithClock returns a copy of c reading the current time from now.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	cp := *c
	cp.now = now
	return &cp
}

// Compute resolves username and returns the possible and still available
// hours for date. Unknown users yield store.ErrNotFound.
func (c *Calculator) Compute(ctx context.Context, username, date string) (Result, error) {
	day, err := ParseDate(date, c.loc)
	if err != nil {
		return Result{}, err
	}

	user, err := c.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return Result{}, err
	}

	return ForDay(ctx, c.intervals, c.bookings, user.ID, day, c.now())
}

// ForDay computes availability of userID on day's calendar date as seen at now.
// Callers holding a transaction pass it as both lookups.
func ForDay(ctx context.Context, intervals IntervalLookup, bookings BookingLookup, userID uuid.UUID, day, now time.Time) (Result, error) {
	if domain.EndOfDay(day).Before(now) {
		return emptyResult(), nil
	}

	window, err := intervals.FindInterval(ctx, userID, int(day.Weekday()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return emptyResult(), nil
		}
		return Result{}, err
	}

	possible := window.Hours()
	if len(possible) == 0 {
		return emptyResult(), nil
	}

	// The booking range is inclusive of the end hour while possible times
	// exclude it. Kept as-is until the intended boundary is confirmed.
	from := domain.AtHour(day, window.StartHour())
	to := domain.AtHour(day, window.EndHour())
	if eod := domain.EndOfDay(day); to.After(eod) {
		to = eod
	}
	booked, err := bookings.ListSchedulings(ctx, userID, from, to)
	if err != nil {
		return Result{}, err
	}

	return Result{
		PossibleTimes:  possible,
		AvailableTimes: freeHours(possible, booked, day.Location()),
	}, nil
}

func freeHours(possible []int, booked []domain.Scheduling, loc *time.Location) []int {
	taken := make(map[int]struct{}, len(booked))
	for _, b := range booked {
		taken[b.Date.In(loc).Hour()] = struct{}{}
	}
	return freeHoursIn(possible, taken)
}

// ParseDate accepts a calendar date ("2006-01-02", read in loc) or an RFC3339
// timestamp, which keeps its own offset.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, validationError("date not provided")
	}
	if t, err := time.ParseInLocation(time.DateOnly, date, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, nil
	}
	return time.Time{}, validationError("invalid date")
}
