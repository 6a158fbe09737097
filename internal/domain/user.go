package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Username  string    `bun:"username,notnull"`
	Name      string    `bun:"name,notnull"`
	Bio       string    `bun:"bio,notnull"`
	Email     *string   `bun:"email"`
	AvatarURL *string   `bun:"avatar_url"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if err := ensureID(&u.ID); err != nil {
			return err
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		u.UpdatedAt = now
	}
	return nil
}

// Account links a user to an identity provider login.
type Account struct {
	bun.BaseModel `bun:"table:accounts"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	UserID            uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Type              string    `bun:"type,notnull"`
	Provider          string    `bun:"provider,notnull"`
	ProviderAccountID string    `bun:"provider_account_id,notnull"`
	RefreshToken      *string   `bun:"refresh_token"`
	AccessToken       *string   `bun:"access_token"`
	ExpiresAt         *int64    `bun:"expires_at"`
	TokenType         *string   `bun:"token_type"`
	Scope             *string   `bun:"scope"`
	IDToken           *string   `bun:"id_token"`
	SessionState      *string   `bun:"session_state"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

func (a *Account) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		return ensureID(&a.ID)
	}
	return nil
}

type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	SessionToken string    `bun:"session_token,notnull"`
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Expires      time.Time `bun:"expires,notnull"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

func (s *Session) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		return ensureID(&s.ID)
	}
	return nil
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}

func ensureID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v
	return nil
}
