package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/models"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// assignmentStore is the repository surface the assignment engine depends on.
type assignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListForAdmin(ctx context.Context, adminID string) ([]models.Assignment, error)
	ListForUser(ctx context.Context, userID string) ([]models.Assignment, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.AssignmentStatus) (*models.Assignment, error)
}

// principalResolver resolves upload references (usernames) to principals.
type principalResolver interface {
	FindByUsername(ctx context.Context, username string) (*models.Principal, error)
}

// AssignmentService owns the assignment lifecycle: creation, listing and the
// pending -> accepted/rejected state machine.
type AssignmentService struct {
	assignments assignmentStore
	users       principalResolver
	admins      principalResolver
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(assignments assignmentStore, users, admins principalResolver, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		assignments: assignments,
		users:       users,
		admins:      admins,
		validator:   validate,
		logger:      logger,
	}
}

// Upload resolves the user and admin references by username and creates a
// pending assignment snapshotting the owner's username.
func (s *AssignmentService) Upload(ctx context.Context, req models.UploadAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "user ID, task, and admin ID are required")
	}

	user, err := s.users.FindByUsername(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve user")
	}

	admin, err := s.admins.FindByUsername(ctx, req.AdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin")
	}

	assignment := &models.Assignment{
		UserID:   user.ID,
		AdminID:  admin.ID,
		Username: user.Username,
		Task:     req.Task,
		Status:   models.StatusPending,
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	s.logger.Info("assignment uploaded",
		zap.String("id", assignment.ID),
		zap.String("user", user.Username),
		zap.String("admin", admin.Username))

	return assignment, nil
}

// ListForAdmin returns all assignments routed to the admin. An empty result
// is reported as NotFound, not as an empty success list; callers branch on
// this.
func (s *AssignmentService) ListForAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListForAdmin(ctx, adminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no assignments found for this admin")
	}
	return assignments, nil
}

// ListForUser returns the caller's assignments. Unlike the admin listing an
// empty slice is a plain success.
func (s *AssignmentService) ListForUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Accept finalizes a pending assignment as accepted.
func (s *AssignmentService) Accept(ctx context.Context, id string) (*models.Assignment, error) {
	return s.finalize(ctx, id, models.StatusAccepted)
}

// Reject finalizes a pending assignment as rejected.
func (s *AssignmentService) Reject(ctx context.Context, id string) (*models.Assignment, error) {
	return s.finalize(ctx, id, models.StatusRejected)
}

// finalize transitions a pending assignment to a terminal status. A missing
// assignment is NotFound; an assignment that already left pending is a
// Conflict. Only pending -> accepted and pending -> rejected are allowed.
func (s *AssignmentService) finalize(ctx context.Context, id string, status models.AssignmentStatus) (*models.Assignment, error) {
	updated, err := s.assignments.UpdateStatusIfPending(ctx, id, status)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	// No pending row matched: distinguish absent from already finalized.
	existing, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return nil, appErrors.Clone(appErrors.ErrConflict, "assignment is already "+string(existing.Status))
}
