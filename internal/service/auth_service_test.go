package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrelay/taskrelay-api/internal/models"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// fakeCredentialStore is an in-memory credential store for one variant.
type fakeCredentialStore struct {
	role       models.Role
	principals []*models.Principal
	createErr  error
}

func (f *fakeCredentialStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Principal, error) {
	for _, p := range f.principals {
		if p.Email == email || p.Username == username {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCredentialStore) FindByEmailWithPassword(ctx context.Context, email string) (*models.Principal, error) {
	for _, p := range f.principals {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCredentialStore) Create(ctx context.Context, p *models.Principal) error {
	if f.createErr != nil {
		return f.createErr
	}
	if p.ID == "" {
		p.ID = "gen-1"
	}
	f.principals = append(f.principals, p)
	return nil
}

func (f *fakeCredentialStore) Role() models.Role { return f.role }

func newTestAuthService(store *fakeCredentialStore) (*AuthService, *TokenIssuer) {
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(store, tokens, nil, nil), tokens
}

func TestRegisterThenLogin(t *testing.T) {
	store := &fakeCredentialStore{role: models.RoleUser}
	svc, tokens := newTestAuthService(store)

	reg, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.Principal.Email)
	assert.Equal(t, models.RoleUser, reg.Principal.Role)
	assert.True(t, reg.Principal.IsActive)
	assert.NotEqual(t, "hunter22", reg.Principal.PasswordHash)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	claims, err := tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Principal.ID, claims.PrincipalID)
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestAuthService(&fakeCredentialStore{role: models.RoleUser})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _ := newTestAuthService(&fakeCredentialStore{role: models.RoleUser})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterDuplicate(t *testing.T) {
	store := &fakeCredentialStore{role: models.RoleAdmin}
	svc, _ := newTestAuthService(store)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Username: "bob2", Email: "bob@example.com", Password: "hunter22",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestSameEmailAcrossVariants(t *testing.T) {
	userSvc, _ := newTestAuthService(&fakeCredentialStore{role: models.RoleUser})
	adminSvc, _ := newTestAuthService(&fakeCredentialStore{role: models.RoleAdmin})

	_, err := userSvc.Register(context.Background(), models.RegisterRequest{
		Username: "sam", Email: "sam@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// Separate tables, so the same email registers independently as admin.
	_, err = adminSvc.Register(context.Background(), models.RegisterRequest{
		Username: "sam", Email: "sam@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(&fakeCredentialStore{role: models.RoleUser})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	store := &fakeCredentialStore{role: models.RoleUser}
	svc, _ := newTestAuthService(store)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginFederatedOnlyAccount(t *testing.T) {
	provider := models.OAuthProviderGoogle
	externalID := "ext-1"
	store := &fakeCredentialStore{role: models.RoleUser, principals: []*models.Principal{{
		ID:            "u1",
		Username:      "alice",
		Email:         "alice@example.com",
		Role:          models.RoleUser,
		OAuthProvider: &provider,
		OAuthID:       &externalID,
		IsActive:      true,
	}}}
	svc, _ := newTestAuthService(store)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "anything",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}
