package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

type AccountRepo struct {
	db *bun.DB
}

func NewAccountRepo(db *bun.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Link(ctx context.Context, account domain.Account) (domain.Account, error) {
	m := account
	m.User = nil
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, store.ErrConflict
		}
		return domain.Account{}, err
	}
	return m, nil
}

func (r *AccountRepo) Bind(ctx context.Context, user domain.User, account domain.Account) (domain.User, error) {
	var out domain.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var locked domain.User
		err := tx.NewSelect().
			Model(&locked).
			Where("id = ?", user.ID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}

		linked, err := tx.NewSelect().
			Model((*domain.Account)(nil)).
			Where("user_id = ?", user.ID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if linked {
			return store.ErrConflict
		}

		out, err = updateIdentity(ctx, tx, user)
		if err != nil {
			return err
		}

		m := account
		m.User = nil
		m.UserID = user.ID
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return store.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return out, nil
}

func (r *AccountRepo) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (domain.User, error) {
	var a domain.Account
	err := r.db.NewSelect().
		Model(&a).
		Relation("User").
		Where("account.provider = ?", provider).
		Where("account.provider_account_id = ?", providerAccountID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	if a.User == nil {
		return domain.User{}, store.ErrNotFound
	}
	return *a.User, nil
}

type SessionRepo struct {
	db *bun.DB
}

func NewSessionRepo(db *bun.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	m := session
	m.User = nil
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Session{}, store.ErrConflict
		}
		return domain.Session{}, err
	}
	return m, nil
}

func (r *SessionRepo) GetWithUser(ctx context.Context, sessionToken string) (domain.Session, domain.User, error) {
	var s domain.Session
	err := r.db.NewSelect().
		Model(&s).
		Relation("User").
		Where("session.session_token = ?", sessionToken).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.User{}, store.ErrNotFound
		}
		return domain.Session{}, domain.User{}, err
	}
	if s.User == nil {
		return domain.Session{}, domain.User{}, store.ErrNotFound
	}
	user := *s.User
	s.User = nil
	return s, user, nil
}

func (r *SessionRepo) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	m := session
	m.User = nil
	res, err := r.db.NewUpdate().
		Model(&m).
		Column("user_id", "expires").
		Where("session_token = ?", session.SessionToken).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if err := expectAffected(res); err != nil {
		return domain.Session{}, err
	}
	return m, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionToken string) error {
	res, err := r.db.NewDelete().
		Model((*domain.Session)(nil)).
		Where("session_token = ?", sessionToken).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*domain.Session)(nil)).
		Where("expires <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
