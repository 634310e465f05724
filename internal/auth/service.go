package auth

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/models"
	"github.com/ayush/task-tracker/internal/session"
)

// UserStore defines the persistence operations the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateEmail(ctx context.Context, userID int64, email string) error
	DeleteUser(ctx context.Context, userID int64) error
}

// Same shape check the API has always used: something@something.tld.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = validator.New()

// Service implements registration, login and account management.
type Service struct {
	users    UserStore
	sessions session.Store
}

func NewService(users UserStore, sessions session.Store) *Service {
	return &Service{users: users, sessions: sessions}
}

// Register creates a user and opens a session for it. The uniqueness check
// and the insert are separate statements; a concurrent registration race
// falls through to the store's unique constraint.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	// The length check ignores surrounding whitespace, but the username is
	// stored exactly as sent.
	checked := req
	checked.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(checked); err != nil {
		return nil, "", registerValidationError(err)
	}

	existing, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	if existing != nil {
		return nil, "", apperr.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}

	user, err := s.users.CreateUser(ctx, req.Username, string(hash))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, "", err
		}
		return nil, "", apperr.Storage(err)
	}

	sid, err := s.sessions.Create(ctx, session.Payload{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	return user, sid, nil
}

func registerValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch {
			case fe.Field() == "Username" && fe.Tag() == "min":
				return apperr.Validation("username must be at least 3 chars")
			case fe.Field() == "Password" && fe.Tag() == "min":
				return apperr.Validation("password must be at least 6 chars")
			}
		}
	}
	return apperr.Validation("username and password required")
}

// Login verifies credentials and opens a session. Unknown username and wrong
// password produce the same error so neither case is distinguishable.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	if req.Username == "" || req.Password == "" {
		return nil, "", apperr.Validation("username and password required")
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	if user == nil {
		return nil, "", apperr.Authentication("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", apperr.Authentication("Invalid credentials")
	}

	sid, err := s.sessions.Create(ctx, session.Payload{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, "", apperr.Storage(err)
	}
	return user, sid, nil
}

// Logout destroys the session token. Succeeds even when no session existed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// CurrentUser returns the user for an authenticated identity, or (nil, nil)
// when the user row no longer exists.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return user, nil
}

// ChangeEmail normalizes, validates and stores a new email for the user.
// Returns the normalized form.
func (s *Service) ChangeEmail(ctx context.Context, userID int64, newEmail string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(newEmail))
	if email == "" {
		return "", apperr.Validation("Email required")
	}
	if !emailRe.MatchString(email) {
		return "", apperr.Validation("Invalid email format")
	}

	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.Storage(err)
	}
	if existing != nil && existing.ID != userID {
		return "", apperr.Conflict("Email already in use")
	}

	if err := s.users.UpdateEmail(ctx, userID, email); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return "", err
		}
		return "", apperr.Storage(err)
	}
	return email, nil
}

// DeleteAccount verifies the password, deletes the user (tasks cascade) and
// destroys the session. A failed session destroy is logged, not surfaced.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, password, token string) error {
	if password == "" {
		return apperr.Validation("Password required")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return apperr.Storage(err)
	}
	if user == nil {
		return apperr.Validation("User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return apperr.Authentication("Incorrect password")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return apperr.Storage(err)
	}

	if token != "" {
		if err := s.sessions.Delete(ctx, token); err != nil {
			log.Printf("session destroy after account delete: %v", err)
		}
	}
	return nil
}
