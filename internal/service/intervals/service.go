package intervals

import (
	"context"
	"fmt"

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

// minWindowMinutes keeps every enabled day at least one bookable slot long.
const minWindowMinutes = 60

type Service struct {
	repo store.CalendarRepository
}

func NewService(repo store.CalendarRepository) *Service {
	return &Service{repo: repo}
}

type IntervalInput struct {
	WeekDay   int
	Enabled   bool
	StartTime string
	EndTime   string
}

// Set replaces the user's weekly windows with the enabled entries of in.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, in []IntervalInput) ([]domain.UserTimeInterval, error) {
	if userID == uuid.Nil {
		return nil, validationError("user_id is required")
	}

	intervals, err := normalize(in)
	if err != nil {
		return nil, err
	}

	var out []domain.UserTimeInterval
	err = s.repo.InUserTransaction(ctx, userID, func(ctx context.Context, tx store.CalendarTx) error {
		rows, err := tx.ReplaceIntervals(ctx, userID, intervals)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error) {
	return s.repo.ListIntervals(ctx, userID)
}

func normalize(in []IntervalInput) ([]domain.UserTimeInterval, error) {
	if len(in) != 7 {
		return nil, validationError("intervals must list all 7 week days")
	}

	seen := make(map[int]struct{}, len(in))
	out := make([]domain.UserTimeInterval, 0, len(in))
	for _, iv := range in {
		if !domain.ValidWeekDay(iv.WeekDay) {
			return nil, validationError("invalid week day")
		}
		if _, ok := seen[iv.WeekDay]; ok {
			return nil, validationError("duplicate week day")
		}
		seen[iv.WeekDay] = struct{}{}

		if !iv.Enabled {
			continue
		}

		start, err := domain.ParseClock(iv.StartTime)
		if err != nil {
			return nil, validationError(fmt.Sprintf("invalid start time for week day %d", iv.WeekDay))
		}
		end, err := domain.ParseClock(iv.EndTime)
		if err != nil {
			return nil, validationError(fmt.Sprintf("invalid end time for week day %d", iv.WeekDay))
		}
		if end-start < minWindowMinutes {
			return nil, validationError("end time must be at least 1h after start time")
		}

		out = append(out, domain.UserTimeInterval{
			WeekDay:            iv.WeekDay,
			TimeStartInMinutes: start,
			TimeEndInMinutes:   end,
		})
	}

	if len(out) == 0 {
		return nil, validationError("select at least one week day")
	}
	return out, nil
}
