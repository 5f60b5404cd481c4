package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

// Notifier is the best-effort notification sink. Failures are logged and
// never surfaced to the caller.
type Notifier interface {
	Notify(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

var ErrInvalidInput = errors.New("invalid input")

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if len(params.Username) < 3 || len(params.Username) > 30 {
		return nil, fmt.Errorf("%w: username must be 3-30 characters", ErrInvalidInput)
	}

	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}

	if len(params.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	if _, err := s.repo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         RoleUser,
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, u)

	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

type UpdateProfileParams struct {
	Username *string
	Email    *string
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		if len(*params.Username) < 3 || len(*params.Username) > 30 {
			return nil, fmt.Errorf("%w: username must be 3-30 characters", ErrInvalidInput)
		}

		u.Username = *params.Username
	}

	if params.Email != nil && *params.Email != u.Email {
		if _, err := mail.ParseAddress(*params.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
		}

		if _, err := s.repo.GetUserByEmail(ctx, *params.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		u.Email = *params.Email
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// sendWelcome fires the welcome mail off the request path. Registration never
// fails because of the notification sink.
func (s *Service) sendWelcome(ctx context.Context, u *User) {
	if s.notifier == nil {
		return
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)

	go func() {
		defer cancel()

		body := welcomeBody(u.Username)
		if err := s.notifier.Notify(detached, u.Email, "Welcome to GiveHub", body); err != nil {
			slog.Error("failed to send welcome email", "user_id", u.ID, "error", err)
		}
	}()
}

func welcomeBody(username string) string {
	return fmt.Sprintf(`<h1>Welcome to GiveHub</h1>
<p>Hello <strong>%s</strong>,</p>
<p>Thank you for joining. You can now browse campaigns and make donations.</p>`, username)
}
