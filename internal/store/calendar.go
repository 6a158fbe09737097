package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
)

// CalendarReader is the read side shared by the repository and its transactions.
type CalendarReader interface {
	FindInterval(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error)
	ListIntervals(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error)
	// ListSchedulings returns bookings whose date lies in [from, to], both ends inclusive.
	ListSchedulings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error)
}

type CalendarTx interface {
	CalendarReader

	ReplaceIntervals(ctx context.Context, userID uuid.UUID, intervals []domain.UserTimeInterval) ([]domain.UserTimeInterval, error)
	CreateScheduling(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error)
}

type CalendarRepository interface {
	CalendarReader

	// InUserTransaction runs fn in a transaction serialized with every other
	// calendar write for the same user.
	InUserTransaction(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, tx CalendarTx) error) error
}
