package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medishare-backend-go/internal/models"
)

func TestAuditRecordValidation(t *testing.T) {
	t.Parallel()
	svc := NewAuditService(&fakeAuditRepo{}, newFakeReportRepo(), newFakeSharedRepo(newFakeReportRepo()), newFakeUserRepo(), zap.NewNop())

	err := svc.Record(context.Background(), models.AuditLog{Action: models.AuditActionView})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.Record(context.Background(), models.AuditLog{Resource: "report:x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuditListForUser(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	reports := newFakeReportRepo()
	shared := newFakeSharedRepo(reports)
	audits := &fakeAuditRepo{}
	svc := NewAuditService(audits, reports, shared, users, zap.NewNop())
	ctx := context.Background()

	owner := &models.User{Email: "owner@example.com", Name: "Owner"}
	_, err := users.Create(ctx, owner)
	require.NoError(t, err)
	viewer := &models.User{Email: "doctor@example.com", Name: "Doctor"}
	_, err = users.Create(ctx, viewer)
	require.NoError(t, err)

	owned := &models.Report{Title: "Blood Panel", OwnerID: owner.ID, CreatedAt: time.Now()}
	ownedID, err := reports.Create(ctx, owned)
	require.NoError(t, err)
	foreign := &models.Report{Title: "Unrelated", OwnerID: viewer.ID, CreatedAt: time.Now()}
	foreignID, err := reports.Create(ctx, foreign)
	require.NoError(t, err)

	base := time.Now().UTC()
	require.NoError(t, svc.Record(ctx, models.AuditLog{
		UserID: owner.ID, Action: models.AuditActionCreate,
		Resource: models.ReportResource(ownedID), CreatedAt: base,
	}))
	require.NoError(t, svc.Record(ctx, models.AuditLog{
		UserID: viewer.ID, Action: models.AuditActionView,
		Resource: models.ReportResource(ownedID), CreatedAt: base.Add(time.Minute),
	}))
	// Anonymous token redemption.
	require.NoError(t, svc.Record(ctx, models.AuditLog{
		Action:   models.AuditActionView,
		Resource: models.ReportResource(ownedID), CreatedAt: base.Add(2 * time.Minute),
	}))
	// Belongs to a report the owner has no stake in.
	require.NoError(t, svc.Record(ctx, models.AuditLog{
		UserID: viewer.ID, Action: models.AuditActionCreate,
		Resource: models.ReportResource(foreignID), CreatedAt: base,
	}))

	entries, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3, "only entries for the owner's reports are listed")

	// Newest first.
	assert.Equal(t, models.AuditActionView, entries[0].Action)
	assert.Nil(t, entries[0].User, "anonymous views carry no actor")
	assert.Equal(t, "Blood Panel", entries[0].ResourceName)

	assert.Equal(t, viewer.ID, entries[1].UserID)
	require.NotNil(t, entries[1].User)
	assert.Equal(t, "Doctor", entries[1].User.Name)

	assert.Equal(t, models.AuditActionCreate, entries[2].Action)
}

func TestAuditListForUserIncludesSharedReports(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	reports := newFakeReportRepo()
	shared := newFakeSharedRepo(reports)
	audits := &fakeAuditRepo{}
	svc := NewAuditService(audits, reports, shared, users, zap.NewNop())
	ctx := context.Background()

	owner := &models.User{Email: "owner@example.com", Name: "Owner"}
	_, err := users.Create(ctx, owner)
	require.NoError(t, err)
	sharee := &models.User{Email: "doctor@example.com", Name: "Doctor"}
	_, err = users.Create(ctx, sharee)
	require.NoError(t, err)

	report := &models.Report{Title: "X-Ray", OwnerID: owner.ID}
	reportID, err := reports.Create(ctx, report)
	require.NoError(t, err)
	require.NoError(t, shared.GrantAccess(ctx, reportID, owner.ID, sharee.ID, models.AccessTypeFace))

	require.NoError(t, svc.Record(ctx, models.AuditLog{
		UserID: owner.ID, Action: models.AuditActionCreate,
		Resource: models.ReportResource(reportID),
	}))

	entries, err := svc.ListForUser(ctx, sharee.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "X-Ray", entries[0].ResourceName)
}
