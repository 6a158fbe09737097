package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserTimeInterval is a user's bookable window for one weekday (0 = Sunday).
// Offsets are minutes from midnight.
type UserTimeInterval struct {
	bun.BaseModel `bun:"table:user_time_intervals"`

	ID                 uuid.UUID `bun:"id,pk,type:uuid"`
	UserID             uuid.UUID `bun:"user_id,notnull,type:uuid"`
	WeekDay            int       `bun:"week_day,notnull"`
	TimeStartInMinutes int       `bun:"time_start_in_minutes,notnull"`
	TimeEndInMinutes   int       `bun:"time_end_in_minutes,notnull"`
}

func (i *UserTimeInterval) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		return ensureID(&i.ID)
	}
	return nil
}

// StartHour and EndHour floor the minute offsets to whole hours.
func (i UserTimeInterval) StartHour() int { return i.TimeStartInMinutes / 60 }
func (i UserTimeInterval) EndHour() int   { return i.TimeEndInMinutes / 60 }

// Hours lists the bookable slots; the end hour is exclusive.
func (i UserTimeInterval) Hours() []int {
	start, end := i.StartHour(), i.EndHour()
	if end <= start {
		return []int{}
	}
	out := make([]int, 0, end-start)
	for h := start; h < end; h++ {
		out = append(out, h)
	}
	return out
}

func ValidWeekDay(d int) bool {
	return d >= 0 && d <= 6
}

var errInvalidClock = errors.New("invalid time of day")

// ParseClock converts a 24h "HH:MM" string, 00:00 through 23:59, into minutes
// from midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, errInvalidClock
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, errInvalidClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, errInvalidClock
	}
	if h < 0 || m < 0 || m > 59 || h > 23 {
		return 0, errInvalidClock
	}
	return h*60 + m, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
