package users

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

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

const maxBioLength = 1000

var usernamePattern = regexp.MustCompile(`^[a-z-]+$`)

// reservedUsernames collide with static routes under /api/users.
var reservedUsernames = map[string]struct{}{
	"time-intervals": {},
	"profile":        {},
}

type Service struct {
	repo store.UserRepository
}

func NewService(repo store.UserRepository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Username string
	Name     string
}

// NormalizeUsername lowercases and validates a claimed username.
func NormalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if utf8.RuneCountInString(username) < 3 {
		return "", validationError("username must have at least 3 letters")
	}
	if !usernamePattern.MatchString(username) {
		return "", validationError("username may only contain letters and hyphens")
	}
	if _, ok := reservedUsernames[username]; ok {
		return "", validationError("username is reserved")
	}
	return username, nil
}

// Create claims a username. A taken username yields store.ErrConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	username, err := NormalizeUsername(in.Username)
	if err != nil {
		return domain.User{}, err
	}
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 3 {
		return domain.User{}, validationError("name must have at least 3 letters")
	}

	return s.repo.Create(ctx, domain.User{
		Username: username,
		Name:     name,
	})
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, bio string) error {
	if userID == uuid.Nil {
		return validationError("user_id is required")
	}
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > maxBioLength {
		return validationError("bio too long")
	}
	return s.repo.UpdateBio(ctx, userID, bio)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
}
