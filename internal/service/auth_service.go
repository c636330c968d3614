package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"safetrack/internal/auth"
	"safetrack/internal/domain"
	"safetrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	// bcrypt hashes at most 72 bytes and errors beyond that
	maxPasswordLength = 72
)

// TokenIssuer signs identities into bearer tokens.
type TokenIssuer interface {
	Issue(id domain.Identity) (string, error)
}

// AuthService account registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	// SeedAdmin creates an admin account unless the email is already taken.
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type authService struct {
	users  repository.UsersRepository
	tokens TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UsersRepository, tokens TokenIssuer, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, logger: logger, now: time.Now}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	var errs []string
	if name == "" {
		errs = append(errs, "Name is required")
	}
	if email == "" {
		errs = append(errs, "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "Please provide a valid email")
	}
	switch {
	case len(req.Password) < minPasswordLength:
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	case len(req.Password) > maxPasswordLength:
		errs = append(errs, fmt.Sprintf("Password must be at most %d characters", maxPasswordLength))
	}
	if len(errs) > 0 {
		return nil, invalid("Validation failed", errs...)
	}

	user, err := s.createUser(ctx, name, email, req.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return s.respond(user)
}

func (s *authService) createUser(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		MedicalConditions: []string{},
		Allergies:         []string{},
		Medications:       []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
		LastLogin:         &now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Please provide email and password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Login failed", zap.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Login failed", zap.String("reason", "bad_password"), zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	at := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, at); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &at
	}
	return s.respond(user)
}

func (s *authService) respond(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(domain.Identity{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return invalid("Validation failed",
			fmt.Sprintf("Password must be %d to %d characters", minPasswordLength, maxPasswordLength))
	}
	user, err := s.createUser(ctx, name, normalizeEmail(email), password, domain.RoleAdmin)
	if errors.Is(err, ErrDuplicateEmail) {
		s.logger.Info("Admin account already present", zap.String("email", normalizeEmail(email)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("Admin account created", zap.String("user_id", user.ID))
	return nil
}
