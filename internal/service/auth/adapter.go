// Package auth persists identity-provider sign-ins: users, linked accounts
// and database sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

// ErrAccountNotLinked is returned when a provider login carries the email of
// an existing user that was never linked to that provider.
var ErrAccountNotLinked = errors.New("email already registered with another account")

type Profile struct {
	Name      string
	Email     string
	AvatarURL string
}

type Adapter struct {
	users      store.UserRepository
	accounts   store.AccountRepository
	sessions   store.SessionRepository
	claims     *ClaimSigner
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAdapter(users store.UserRepository, accounts store.AccountRepository, sessions store.SessionRepository, claims *ClaimSigner, sessionTTL time.Duration) *Adapter {
	return &Adapter{
		users:      users,
		accounts:   accounts,
		sessions:   sessions,
		claims:     claims,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// CreateUser attaches the provider profile to the user named by the claim token.
func (a *Adapter) CreateUser(ctx context.Context, claimToken string, p Profile) (domain.User, error) {
	user, err := a.claimedUser(ctx, claimToken)
	if err != nil {
		return domain.User{}, err
	}
	applyProfile(&user, p)
	return a.users.UpdateIdentity(ctx, user)
}

func (a *Adapter) claimedUser(ctx context.Context, claimToken string) (domain.User, error) {
	userID, err := a.claims.Verify(claimToken)
	if err != nil {
		return domain.User{}, err
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrMissingClaim
		}
		return domain.User{}, err
	}
	return user, nil
}

func (a *Adapter) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return a.users.GetByID(ctx, id)
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return a.users.GetByEmail(ctx, strings.TrimSpace(email))
}

func (a *Adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (domain.User, error) {
	return a.accounts.GetUserByAccount(ctx, provider, providerAccountID)
}

func (a *Adapter) UpdateUser(ctx context.Context, id uuid.UUID, p Profile) (domain.User, error) {
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	applyProfile(&user, p)
	return a.users.UpdateIdentity(ctx, user)
}

var errIncompleteAccount = errors.New("account requires user, provider and provider account id")

func (a *Adapter) LinkAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.UserID == uuid.Nil || account.Provider == "" || account.ProviderAccountID == "" {
		return domain.Account{}, errIncompleteAccount
	}
	return a.accounts.Link(ctx, account)
}

func (a *Adapter) CreateSession(ctx context.Context, userID uuid.UUID) (domain.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return domain.Session{}, err
	}
	return a.sessions.Create(ctx, domain.Session{
		SessionToken: token,
		UserID:       userID,
		Expires:      a.now().Add(a.sessionTTL).UTC(),
	})
}

// GetSessionAndUser returns store.ErrNotFound for unknown and expired sessions.
func (a *Adapter) GetSessionAndUser(ctx context.Context, sessionToken string) (domain.Session, domain.User, error) {
	if sessionToken == "" {
		return domain.Session{}, domain.User{}, store.ErrNotFound
	}
	session, user, err := a.sessions.GetWithUser(ctx, sessionToken)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	if session.Expired(a.now()) {
		return domain.Session{}, domain.User{}, store.ErrNotFound
	}
	return session, user, nil
}

// UpdateSession pushes the expiry of session one full TTL past now.
func (a *Adapter) UpdateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	session.Expires = a.now().Add(a.sessionTTL).UTC()
	return a.sessions.Update(ctx, session)
}

// Authenticate resolves a session cookie, sliding its expiry once half of
// the TTL has elapsed.
func (a *Adapter) Authenticate(ctx context.Context, sessionToken string) (domain.Session, domain.User, error) {
	session, user, err := a.GetSessionAndUser(ctx, sessionToken)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	if session.Expires.Sub(a.now()) < a.sessionTTL/2 {
		session, err = a.UpdateSession(ctx, session)
		if err != nil {
			return domain.Session{}, domain.User{}, err
		}
	}
	return session, user, nil
}

func (a *Adapter) DeleteSession(ctx context.Context, sessionToken string) error {
	return a.sessions.Delete(ctx, sessionToken)
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return a.sessions.DeleteExpired(ctx, a.now())
}

type SignInInput struct {
	ClaimToken string
	Profile    Profile
	Account    domain.Account
}

type SignInResult struct {
	User    domain.User
	Session domain.Session
	Created bool
}

// SignIn completes a provider login: known accounts get a new session,
// unknown ones are bound to the claimed user first. A claim whose user already
// has a linked account is rejected with store.ErrConflict.
func (a *Adapter) SignIn(ctx context.Context, in SignInInput) (SignInResult, error) {
	user, err := a.GetUserByAccount(ctx, in.Account.Provider, in.Account.ProviderAccountID)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		if email := strings.TrimSpace(in.Profile.Email); email != "" {
			_, err := a.GetUserByEmail(ctx, email)
			if err == nil {
				return SignInResult{}, ErrAccountNotLinked
			}
			if !errors.Is(err, store.ErrNotFound) {
				return SignInResult{}, err
			}
		}

		claimed, err := a.claimedUser(ctx, in.ClaimToken)
		if err != nil {
			return SignInResult{}, err
		}
		if in.Account.Provider == "" || in.Account.ProviderAccountID == "" {
			return SignInResult{}, errIncompleteAccount
		}
		applyProfile(&claimed, in.Profile)
		account := in.Account
		account.UserID = claimed.ID
		user, err = a.accounts.Bind(ctx, claimed, account)
		if err != nil {
			return SignInResult{}, err
		}
		created = true
	default:
		return SignInResult{}, err
	}

	session, err := a.CreateSession(ctx, user.ID)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{User: user, Session: session, Created: created}, nil
}

func applyProfile(user *domain.User, p Profile) {
	if name := strings.TrimSpace(p.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		user.Email = &email
	}
	if avatar := strings.TrimSpace(p.AvatarURL); avatar != "" {
		user.AvatarURL = &avatar
	}
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
