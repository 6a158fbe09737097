package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Scheduling is a booking of the one-hour slot starting at Date.
type Scheduling struct {
	bun.BaseModel `bun:"table:schedulings"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Date         time.Time `bun:"date,notnull"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	Observations string    `bun:"observations,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (s *Scheduling) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if err := ensureID(&s.ID); err != nil {
			return err
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

// SlotDuration is the length of every bookable slot.
const SlotDuration = time.Hour

func (s Scheduling) End() time.Time {
	return s.Date.Add(SlotDuration)
}
