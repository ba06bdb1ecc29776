package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/repository"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// identityStore is the slice of the principal repository the resolver uses.
type identityStore interface {
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	FindByExternalIdentity(ctx context.Context, provider, oauthID string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) error
	Role() models.Role
}

// IdentityResolver maps verified external-provider identities to local
// principals, creating one on first sight. User and admin identities resolve
// against separate stores and never cross.
type IdentityResolver struct {
	users  identityStore
	admins identityStore
	logger *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(users, admins identityStore, logger *zap.Logger) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{users: users, admins: admins, logger: logger}
}

func (r *IdentityResolver) storeFor(kind models.Role) (identityStore, error) {
	switch kind {
	case models.RoleUser:
		return r.users, nil
	case models.RoleAdmin:
		return r.admins, nil
	default:
		return nil, fmt.Errorf("unknown principal kind %q", kind)
	}
}

// Resolve returns the principal linked to the profile's (provider, subject)
// pair in the given variant's store, creating a new principal with no
// password hash when the identity has not been seen before.
func (r *IdentityResolver) Resolve(ctx context.Context, kind models.Role, profile models.Profile) (*models.Principal, error) {
	store, err := r.storeFor(kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unresolvable principal kind")
	}

	existing, err := store.FindByExternalIdentity(ctx, profile.Provider, profile.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up external identity")
	}

	provider := profile.Provider
	externalID := profile.ExternalID
	principal := &models.Principal{
		Username:      profile.DisplayName,
		Email:         strings.ToLower(strings.TrimSpace(profile.Email)),
		Role:          store.Role(),
		OAuthProvider: &provider,
		OAuthID:       &externalID,
		IsActive:      true,
	}

	if err := store.Create(ctx, principal); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "an account with this username or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create federated account")
	}

	r.logger.Info("federated principal created",
		zap.String("role", string(principal.Role)),
		zap.String("provider", provider),
		zap.String("id", principal.ID))

	return principal, nil
}

// Lookup rehydrates the full principal from a compact (kind, id) reference,
// dispatching to the store recorded in the reference.
func (r *IdentityResolver) Lookup(ctx context.Context, ref models.PrincipalRef) (*models.Principal, error) {
	store, err := r.storeFor(ref.Kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unresolvable principal kind")
	}

	principal, err := store.FindByID(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "principal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}
	return principal, nil
}
