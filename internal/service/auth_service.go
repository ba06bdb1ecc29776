package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/repository"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// credentialStore is the slice of the principal repository the auth flows use.
type credentialStore interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Principal, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) error
	Role() models.Role
}

// AuthService implements local registration and login for one principal
// variant. The server runs two instances, one over the users table and one
// over the admins table.
type AuthService struct {
	store     credentialStore
	tokens    *TokenIssuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store credentialStore, tokens *TokenIssuer, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{store: store, tokens: tokens, validator: validate, logger: logger}
}

// Register creates a new local account and returns it with an issued token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "please provide username, email, and password")
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.FindByEmailOrUsername(ctx, email, username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, fmt.Sprintf("%s with this email or username already exists", s.store.Role()))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing records")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	principal := &models.Principal{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         s.store.Role(),
		IsActive:     true,
	}

	if err := s.store.Create(ctx, principal); err != nil {
		// The pre-check races with concurrent registrations; the unique
		// index is the authoritative guard.
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, fmt.Sprintf("%s with this email or username already exists", s.store.Role()))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	token, err := s.tokens.Issue(principal.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	s.logger.Info("principal registered",
		zap.String("role", string(principal.Role)),
		zap.String("id", principal.ID))

	return &models.AuthResult{Token: token, Principal: principal}, nil
}

// Login authenticates against the stored credential and returns an issued
// token. Unknown email and wrong password are indistinguishable to callers.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	principal, err := s.store.FindByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	// Federated-only accounts have no password hash and cannot log in locally.
	if principal.PasswordHash == "" || !VerifyPassword(req.Password, principal.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	token, err := s.tokens.Issue(principal.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	return &models.AuthResult{Token: token, Principal: principal}, nil
}
