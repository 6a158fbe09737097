package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type CalendarRepo struct {
	db *bun.DB
}

func NewCalendarRepo(db *bun.DB) *CalendarRepo {
	return &CalendarRepo{db: db}
}

type calendarTx struct {
	tx bun.Tx
}

func (r *CalendarRepo) FindInterval(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error) {
	return findInterval(ctx, r.db, userID, weekDay)
}

func (r *CalendarRepo) ListIntervals(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error) {
	return listIntervals(ctx, r.db, userID)
}

func (r *CalendarRepo) ListSchedulings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
	return listSchedulings(ctx, r.db, userID, from, to)
}

func (r *CalendarRepo) InUserTransaction(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockUserCalendar(ctx, tx, userID); err != nil {
			return err
		}
		return fn(ctx, calendarTx{tx: tx})
	})
}

func lockUserCalendar(ctx context.Context, tx bun.Tx, userID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", userID.String()).Exec(ctx)
	return err
}

func (r calendarTx) FindInterval(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error) {
	return findInterval(ctx, r.tx, userID, weekDay)
}

func (r calendarTx) ListIntervals(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error) {
	return listIntervals(ctx, r.tx, userID)
}

func (r calendarTx) ListSchedulings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
	return listSchedulings(ctx, r.tx, userID, from, to)
}

func (r calendarTx) ReplaceIntervals(ctx context.Context, userID uuid.UUID, intervals []domain.UserTimeInterval) ([]domain.UserTimeInterval, error) {
	_, err := r.tx.NewDelete().
		Model((*domain.UserTimeInterval)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return []domain.UserTimeInterval{}, nil
	}

	rows := make([]domain.UserTimeInterval, 0, len(intervals))
	for _, in := range intervals {
		id := in.ID
		if id == uuid.Nil {
			if id, err = uuid.NewV7(); err != nil {
				return nil, err
			}
		}
		rows = append(rows, domain.UserTimeInterval{
			ID:                 id,
			UserID:             userID,
			WeekDay:            in.WeekDay,
			TimeStartInMinutes: in.TimeStartInMinutes,
			TimeEndInMinutes:   in.TimeEndInMinutes,
		})
	}

	if _, err := r.tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) CreateScheduling(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error) {
	m := domain.Scheduling{
		ID:           s.ID,
		UserID:       s.UserID,
		Date:         s.Date,
		Name:         s.Name,
		Email:        s.Email,
		Observations: s.Observations,
		CreatedAt:    s.CreatedAt,
	}

	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "schedulings_user_date_key" {
			return domain.Scheduling{}, store.ErrConflict
		}
		return domain.Scheduling{}, err
	}
	return m, nil
}

func findInterval(ctx context.Context, db bun.IDB, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error) {
	var row domain.UserTimeInterval
	err := db.NewSelect().
		Model(&row).
		Where("user_id = ?", userID).
		Where("week_day = ?", weekDay).
		OrderExpr("time_start_in_minutes ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserTimeInterval{}, store.ErrNotFound
		}
		return domain.UserTimeInterval{}, err
	}
	return row, nil
}

func listIntervals(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]domain.UserTimeInterval, error) {
	var rows []domain.UserTimeInterval
	err := db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("week_day ASC, time_start_in_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func listSchedulings(ctx context.Context, db bun.IDB, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
	var rows []domain.Scheduling
	err := db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("date >= ?", from).
		Where("date <= ?", to).
		OrderExpr("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
