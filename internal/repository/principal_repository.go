package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskrelay/taskrelay-api/internal/models"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, i.e. a duplicate username or email.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// principalColumns deliberately excludes password_hash: the hash is only
// selected by the explicit ...WithPassword lookups used for credential checks.
const principalColumns = "id, username, email, role, oauth_provider, oauth_id, is_active, created_at, updated_at"

// PrincipalRepository provides database access to one principal variant.
// Users and admins are stored in separate tables with identical schemas;
// each table gets its own repository instance.
type PrincipalRepository struct {
	db          *sqlx.DB
	table       string
	defaultRole models.Role
}

// NewUserRepository returns a repository over the users table.
func NewUserRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db, table: "users", defaultRole: models.RoleUser}
}

// NewAdminRepository returns a repository over the admins table.
func NewAdminRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db, table: "admins", defaultRole: models.RoleAdmin}
}

// Role returns the variant this repository stores.
func (r *PrincipalRepository) Role() models.Role {
	return r.defaultRole
}

// FindByID returns a principal by identifier.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 LIMIT 1", principalColumns, r.table)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by id: %w", r.table, err)
	}
	return &p, nil
}

// FindByUsername returns a principal by its exact (case-sensitive) username.
func (r *PrincipalRepository) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE username = $1 LIMIT 1", principalColumns, r.table)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by username: %w", r.table, err)
	}
	return &p, nil
}

// FindByEmailOrUsername returns a principal matching either field. Used by
// registration to detect duplicates before inserting.
func (r *PrincipalRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Principal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1 OR username = $2 LIMIT 1", principalColumns, r.table)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, email, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by email or username: %w", r.table, err)
	}
	return &p, nil
}

// FindByEmailWithPassword returns a principal by email including the stored
// password hash. Only login's credential comparison should use this.
func (r *PrincipalRepository) FindByEmailWithPassword(ctx context.Context, email string) (*models.Principal, error) {
	query := fmt.Sprintf("SELECT %s, password_hash FROM %s WHERE email = $1 LIMIT 1", principalColumns, r.table)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by email with password: %w", r.table, err)
	}
	return &p, nil
}

// FindByExternalIdentity returns the principal linked to the given provider
// subject, or sql.ErrNoRows when the identity has not been seen before.
func (r *PrincipalRepository) FindByExternalIdentity(ctx context.Context, provider, oauthID string) (*models.Principal, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE oauth_provider = $1 AND oauth_id = $2 LIMIT 1", principalColumns, r.table)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, provider, oauthID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by external identity: %w", r.table, err)
	}
	return &p, nil
}

// ListAdminSummaries returns the public directory projection of all active
// admin records.
func (r *PrincipalRepository) ListAdminSummaries(ctx context.Context) ([]models.AdminSummary, error) {
	query := fmt.Sprintf("SELECT id, username FROM %s WHERE role = 'admin' ORDER BY username", r.table)
	var admins []models.AdminSummary
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list %s summaries: %w", r.table, err)
	}
	return admins, nil
}

// Create inserts a new principal. Duplicate usernames or emails surface as a
// unique violation; callers should classify with IsUniqueViolation.
func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = r.defaultRole
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, username, email, password_hash, role, oauth_provider, oauth_id, is_active, created_at, updated_at) VALUES (:id, :username, :email, :password_hash, :role, :oauth_provider, :oauth_id, :is_active, :created_at, :updated_at)`, r.table)
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}
