package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrelay/taskrelay-api/internal/models"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// fakeAssignmentStore keeps assignments in a slice and mimics the atomic
// pending-only update of the SQL repository.
type fakeAssignmentStore struct {
	assignments []*models.Assignment
	nextID      int
}

func (f *fakeAssignmentStore) Create(ctx context.Context, a *models.Assignment) error {
	f.nextID++
	if a.ID == "" {
		a.ID = "as-" + string(rune('0'+f.nextID))
	}
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	f.assignments = append(f.assignments, a)
	return nil
}

func (f *fakeAssignmentStore) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentStore) ListForAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.AdminID == adminID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListForUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) UpdateStatusIfPending(ctx context.Context, id string, status models.AssignmentStatus) (*models.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == id && a.Status == models.StatusPending {
			a.Status = status
			updated := *a
			return &updated, nil
		}
	}
	return nil, sql.ErrNoRows
}

// fakeResolver resolves usernames against a fixed set of principals.
type fakeResolver struct {
	principals map[string]*models.Principal
}

func (f *fakeResolver) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	if p, ok := f.principals[username]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func newTestAssignmentService() (*AssignmentService, *fakeAssignmentStore) {
	store := &fakeAssignmentStore{}
	users := &fakeResolver{principals: map[string]*models.Principal{
		"alice": {ID: "u1", Username: "alice", Role: models.RoleUser},
	}}
	admins := &fakeResolver{principals: map[string]*models.Principal{
		"bob": {ID: "a1", Username: "bob", Role: models.RoleAdmin},
	}}
	return NewAssignmentService(store, users, admins, nil, nil), store
}

func TestUploadCreatesPendingAssignment(t *testing.T) {
	svc, store := newTestAssignmentService()

	a, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{
		UserID: "alice", Task: "write report", AdminID: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, a.Status)
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "a1", a.AdminID)
	assert.Len(t, store.assignments, 1)
}

func TestUploadMissingFields(t *testing.T) {
	svc, store := newTestAssignmentService()

	_, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{UserID: "alice"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.assignments)
}

func TestUploadUnknownAdminCreatesNothing(t *testing.T) {
	svc, store := newTestAssignmentService()

	_, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{
		UserID: "alice", Task: "write report", AdminID: "nobody",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "admin not found", appErr.Message)
	assert.Empty(t, store.assignments)
}

func TestUploadUnknownUser(t *testing.T) {
	svc, _ := newTestAssignmentService()

	_, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{
		UserID: "nobody", Task: "write report", AdminID: "bob",
	})
	require.Error(t, err)
	assert.Equal(t, "user not found", appErrors.FromError(err).Message)
}

func TestListForAdminEmptyIsNotFound(t *testing.T) {
	svc, _ := newTestAssignmentService()

	_, err := svc.ListForAdmin(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListForUserEmptyIsSuccess(t *testing.T) {
	svc, _ := newTestAssignmentService()

	assignments, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestAcceptPendingAssignment(t *testing.T) {
	svc, _ := newTestAssignmentService()

	created, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{
		UserID: "alice", Task: "write report", AdminID: "bob",
	})
	require.NoError(t, err)

	accepted, err := svc.Accept(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
}

func TestRejectAfterAcceptIsConflict(t *testing.T) {
	svc, _ := newTestAssignmentService()

	created, err := svc.Upload(context.Background(), models.UploadAssignmentRequest{
		UserID: "alice", Task: "write report", AdminID: "bob",
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), created.ID)
	require.NoError(t, err)

	// Accepted is terminal: a later reject must not flip the status.
	_, err = svc.Reject(context.Background(), created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	current, err := svc.assignments.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, current.Status)
}

func TestFinalizeMissingAssignment(t *testing.T) {
	svc, _ := newTestAssignmentService()

	_, err := svc.Accept(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
