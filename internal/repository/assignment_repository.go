package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskrelay/taskrelay-api/internal/models"
)

const assignmentColumns = "id, user_id, admin_id, username, task, status, created_at, updated_at"

// AssignmentRepository provides database access for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	const query = `INSERT INTO assignments (id, user_id, admin_id, username, task, status, created_at, updated_at) VALUES (:id, :user_id, :admin_id, :username, :task, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1 LIMIT 1`
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &a, nil
}

// ListForAdmin returns all assignments routed to the given admin.
func (r *AssignmentRepository) ListForAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE admin_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, adminID); err != nil {
		return nil, fmt.Errorf("list assignments for admin: %w", err)
	}
	return assignments, nil
}

// ListForUser returns all assignments owned by the given user.
func (r *AssignmentRepository) ListForUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE user_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list assignments for user: %w", err)
	}
	return assignments, nil
}

// UpdateStatusIfPending finalizes a pending assignment and returns the
// updated record. sql.ErrNoRows means the assignment is absent or no longer
// pending; callers disambiguate with a FindByID. The WHERE clause makes the
// transition atomic, so two concurrent finalizations cannot both win.
func (r *AssignmentRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.AssignmentStatus) (*models.Assignment, error) {
	const query = `UPDATE assignments SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending' RETURNING ` + assignmentColumns
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id, status, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update assignment status: %w", err)
	}
	return &a, nil
}
