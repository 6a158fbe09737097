package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateIdentity(ctx context.Context, user domain.User) (domain.User, error)
	UpdateBio(ctx context.Context, id uuid.UUID, bio string) error
}

type AccountRepository interface {
	Link(ctx context.Context, account domain.Account) (domain.Account, error)
	// Bind writes the identity fields of user and links account to it atomically.
	// ErrConflict when the user already has an account or the account is taken.
	Bind(ctx context.Context, user domain.User, account domain.Account) (domain.User, error)
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	GetWithUser(ctx context.Context, sessionToken string) (domain.Session, domain.User, error)
	Update(ctx context.Context, session domain.Session) (domain.Session, error)
	Delete(ctx context.Context, sessionToken string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
