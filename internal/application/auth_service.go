package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	repo "github.com/oksasatya/fraudwatch/internal/domain/repository"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
	"github.com/oksasatya/fraudwatch/pkg/mailer"
	mailtpl "github.com/oksasatya/fraudwatch/pkg/mailer/templates"
	"github.com/oksasatya/fraudwatch/pkg/metrics"
)

// EventPublisher enqueues JSON jobs for background workers.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService implements registration and authentication.
// It holds no mutable state and is safe for concurrent use.
type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Logger logrus.FieldLogger

	// Optional: welcome mail jobs are published here after registration.
	Publisher EventPublisher
	AppName   string
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, logger logrus.FieldLogger, pub EventPublisher, appName string) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Logger: logger, Publisher: pub, AppName: appName}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by both Register and Authenticate.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account and issues a session token carrying userId, email and name.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, ErrValidation
	}
	if !s.JWT.Configured() {
		s.logConfig("signup")
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeUnavailable).Inc()
		return nil, ErrServerConfig
	}

	existing, err := s.Repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeConflict).Inc()
		return nil, ErrUserExists
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Email: in.Email, Password: hash, Name: in.Name}
	if err := s.Repo.Create(ctx, u); err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeConflict).Inc()
			return nil, ErrUserExists
		}
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, exp, err := s.JWT.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeError).Inc()
		return nil, s.tokenError(err)
	}

	s.publishWelcome(ctx, u)
	metrics.AuthAttempts.WithLabelValues("signup", metrics.OutcomeSuccess).Inc()
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Authenticate verifies email/password and issues a session token carrying userId and email.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	if !s.JWT.Configured() {
		s.logConfig("signin")
		metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeUnavailable).Inc()
		return nil, ErrServerConfig
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			helpers.CompareHashAndPassword(dummyHash(), password)
			metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeInvalid).Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Issue(u.ID, u.Email, "")
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeError).Inc()
		return nil, s.tokenError(err)
	}
	metrics.AuthAttempts.WithLabelValues("signin", metrics.OutcomeSuccess).Inc()
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// GetProfile loads the account behind a token subject.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) tokenError(err error) error {
	if errors.Is(err, helpers.ErrMissingSecret) {
		return ErrServerConfig
	}
	return fmt.Errorf("issue token: %w", err)
}

func (s *AuthService) logConfig(op string) {
	if s.Logger != nil {
		s.Logger.WithField("operation", op).Error("JWT_SECRET environment variable is not defined")
	}
}

func (s *AuthService) publishWelcome(ctx context.Context, u *entity.User) {
	if s.Publisher == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data: map[string]any{
			"Name":    u.Name,
			"Email":   u.Email,
			"AppName": s.AppName,
		},
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = helpers.HashPassword("fraudwatch-timing-equaliser")
	})
	return dummy
}
