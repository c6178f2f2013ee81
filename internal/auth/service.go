package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/observability"
	"github.com/helpmesh/helpmesh/internal/security"
)

// UserStore is the durable user record store.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByRole(ctx context.Context, role string) ([]*domain.User, error)
	SearchVolunteers(ctx context.Context, search, excludeID string, limit int64) ([]*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateLocation(ctx context.Context, id string, loc domain.Location) error
}

// GoogleUser is a verified external identity.
type GoogleUser struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleVerifier exchanges an external ID token for a verified identity.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleUser, error)
}

type Config struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string
}

// Service handles signup, login and Google OAuth login, and owns user role,
// password and location updates.
type Service struct {
	users  UserStore
	google GoogleVerifier
	cfg    Config
}

func NewService(users UserStore, google GoogleVerifier, cfg Config) *Service {
	return &Service{users: users, google: google, cfg: cfg}
}

// Result is what every successful authentication returns.
type Result struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func (s *Service) token(user *domain.User) (string, error) {
	return security.GenerateToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, user, s.cfg.AccessTokenTTL)
}

// adminUser is the synthetic identity issued when the configured admin
// credentials are presented. It never touches the store.
func (s *Service) adminUser() *domain.User {
	return &domain.User{
		ID:       "admin-id",
		Username: "admin",
		Email:    s.cfg.AdminEmail,
		Role:     domain.RoleAdmin,
	}
}

func (s *Service) isAdminLogin(email, password string) bool {
	return s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail && password == s.cfg.AdminPassword
}

func (s *Service) Signup(ctx context.Context, username, email, password string) (*Result, error) {
	if s.isAdminLogin(email, password) {
		admin := s.adminUser()
		token, err := s.token(admin)
		if err != nil {
			return nil, err
		}
		return &Result{User: admin, AccessToken: token}, nil
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailConflict
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	observability.Logger().Info("user_signup", zap.String("user_id", user.ID), zap.String("email", email))

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, AccessToken: token}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	if s.isAdminLogin(email, password) {
		admin := s.adminUser()
		token, err := s.token(admin)
		if err != nil {
			return nil, err
		}
		return &Result{User: admin, AccessToken: token}, nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := security.ComparePassword(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	observability.Logger().Info("user_login", zap.String("user_id", user.ID), zap.String("email", email))

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, AccessToken: token}, nil
}

// LoginWithGoogle verifies the external ID token and finds or creates the
// matching account. First-time Google users get a placeholder password that
// can never satisfy a bcrypt comparison.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken, username string) (*Result, error) {
	g, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("google login: %w", err)
	}

	if g.Email == "" {
		return nil, fmt.Errorf("google login: %w: token carries no email", domain.ErrInvalidToken)
	}

	user, err := s.users.FindByEmail(ctx, g.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		name := username
		if name == "" {
			name = g.Name
		}
		if name == "" {
			name = strings.SplitN(g.Email, "@", 2)[0]
		}

		user, err = s.users.Create(ctx, &domain.User{
			Username: name,
			Email:    g.Email,
			Password: "google-oauth-" + g.UID,
			Role:     domain.RoleUser,
			GoogleID: g.UID,
		})
		if err != nil {
			return nil, fmt.Errorf("create google user: %w", err)
		}
		observability.Logger().Info("google_signup", zap.String("user_id", user.ID), zap.String("email", g.Email))
	} else if err != nil {
		return nil, err
	}

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, AccessToken: token}, nil
}

func (s *Service) UpdatePassword(ctx context.Context, email, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func (s *Service) UpdateRoleByID(ctx context.Context, userID, role string) error {
	return s.users.UpdateRole(ctx, userID, role)
}

func (s *Service) UpdateLocationByID(ctx context.Context, userID string, loc domain.Location) error {
	return s.users.UpdateLocation(ctx, userID, loc)
}

func (s *Service) FindByRole(ctx context.Context, role string) ([]*domain.User, error) {
	return s.users.FindByRole(ctx, role)
}

func (s *Service) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}

// SearchVolunteers lists volunteer accounts for the chat directory,
// excluding the requesting user.
func (s *Service) SearchVolunteers(ctx context.Context, search, excludeID string, limit int64) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.users.SearchVolunteers(ctx, search, excludeID, limit)
}

// GetVolunteer returns a single volunteer profile.
func (s *Service) GetVolunteer(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleVolunteer {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
