package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrelay/taskrelay-api/internal/models"
)

type fakeAdminLister struct {
	summaries []models.AdminSummary
	calls     int
}

func (f *fakeAdminLister) ListAdminSummaries(ctx context.Context) ([]models.AdminSummary, error) {
	f.calls++
	return f.summaries, nil
}

func TestListAdminsWithoutCache(t *testing.T) {
	lister := &fakeAdminLister{summaries: []models.AdminSummary{
		{ID: "a-1", Username: "bob"},
		{ID: "a-2", Username: "carol"},
	}}
	svc := NewDirectoryService(lister, nil, time.Minute, nil)

	admins, err := svc.ListAdmins(context.Background())
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "bob", admins[0].Username)

	// A nil cache degrades every read to the database.
	_, err = svc.ListAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := NewDirectoryService(&fakeAdminLister{}, nil, time.Minute, nil)
	svc.InvalidateAdminDirectory(context.Background())
}
