package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m := user
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrConflict
		}
		return domain.User{}, err
	}
	return m, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// UpdateIdentity overwrites the fields owned by the identity provider.
func (r *UserRepo) UpdateIdentity(ctx context.Context, user domain.User) (domain.User, error) {
	return updateIdentity(ctx, r.db, user)
}

func updateIdentity(ctx context.Context, db bun.IDB, user domain.User) (domain.User, error) {
	m := user
	res, err := db.NewUpdate().
		Model(&m).
		Column("name", "email", "avatar_url", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrConflict
		}
		return domain.User{}, err
	}
	if err := expectAffected(res); err != nil {
		return domain.User{}, err
	}
	return m, nil
}

func (r *UserRepo) UpdateBio(ctx context.Context, id uuid.UUID, bio string) error {
	m := domain.User{ID: id, Bio: bio}
	res, err := r.db.NewUpdate().
		Model(&m).
		Column("bio", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
