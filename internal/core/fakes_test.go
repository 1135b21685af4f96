package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
)

// In-memory repository fakes shared by the service tests. They implement
// just enough of the Firestore semantics the services rely on.

type fakeUserRepo struct {
	users  map[string]*models.User // by ID
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (string, error) {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user '%s': %w", email, db.ErrNotFound)
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type fakeReportRepo struct {
	reports       map[string]*models.Report
	nextID        int
	incrementErr  error
	incrementHits int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*models.Report)}
}

func (r *fakeReportRepo) Create(_ context.Context, report *models.Report) (string, error) {
	r.nextID++
	report.ID = "report-" + strconv.Itoa(r.nextID)
	clone := *report
	r.reports[report.ID] = &clone
	return report.ID, nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, reportID string) (*models.Report, error) {
	report, ok := r.reports[reportID]
	if !ok {
		return nil, fmt.Errorf("report '%s': %w", reportID, db.ErrNotFound)
	}
	clone := *report
	return &clone, nil
}

func (r *fakeReportRepo) GetByOwnerID(_ context.Context, ownerID string) ([]*models.Report, error) {
	var out []*models.Report
	for _, report := range r.reports {
		if report.OwnerID == ownerID {
			clone := *report
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReportRepo) GetByIDs(_ context.Context, reportIDs []string) ([]*models.Report, error) {
	var out []*models.Report
	for _, id := range reportIDs {
		if report, ok := r.reports[id]; ok {
			clone := *report
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) Update(_ context.Context, report *models.Report) error {
	if _, ok := r.reports[report.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) AddComment(_ context.Context, reportID string, comment models.Comment) error {
	report, ok := r.reports[reportID]
	if !ok {
		return db.ErrNotFound
	}
	report.Comments = append(report.Comments, comment)
	return nil
}

func (r *fakeReportRepo) IncrementViews(_ context.Context, reportID string) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	report, ok := r.reports[reportID]
	if !ok {
		return db.ErrNotFound
	}
	r.incrementHits++
	report.Views++
	return nil
}

type fakeSharedRepo struct {
	shares map[string]*models.SharedReport // by report ID
	// reports lets GrantAccess mirror the batched sharableUsers update.
	reports *fakeReportRepo
}

func newFakeSharedRepo(reports *fakeReportRepo) *fakeSharedRepo {
	return &fakeSharedRepo{shares: make(map[string]*models.SharedReport), reports: reports}
}

func (r *fakeSharedRepo) GetByReportID(_ context.Context, reportID string) (*models.SharedReport, error) {
	share, ok := r.shares[reportID]
	if !ok {
		return nil, fmt.Errorf("share for report '%s': %w", reportID, db.ErrNotFound)
	}
	clone := *share
	return &clone, nil
}

func (r *fakeSharedRepo) GetBySharedWith(_ context.Context, userID string) ([]*models.SharedReport, error) {
	var out []*models.SharedReport
	for _, share := range r.shares {
		for _, id := range share.SharedWith {
			if id == userID {
				clone := *share
				out = append(out, &clone)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSharedRepo) GrantAccess(_ context.Context, reportID, sharedBy, targetUserID, accessType string) error {
	report, ok := r.reports.reports[reportID]
	if !ok {
		return db.ErrNotFound
	}
	share, ok := r.shares[reportID]
	if !ok {
		share = &models.SharedReport{
			ID:         reportID,
			ReportID:   reportID,
			SharedBy:   sharedBy,
			AccessType: accessType,
			CreatedAt:  time.Now().UTC(),
		}
		r.shares[reportID] = share
	}
	for _, id := range share.SharedWith {
		if id == targetUserID {
			return nil
		}
	}
	share.SharedWith = append(share.SharedWith, targetUserID)
	report.SharableUsers = append(report.SharableUsers, targetUserID)
	return nil
}

type fakeOtpRepo struct {
	shares []*models.OtpShare
}

func (r *fakeOtpRepo) Create(_ context.Context, share *models.OtpShare) (string, error) {
	share.ID = "otp-" + strconv.Itoa(len(r.shares)+1)
	clone := *share
	r.shares = append(r.shares, &clone)
	return share.ID, nil
}

type fakeAuditRepo struct {
	entries   []*models.AuditLog
	createErr error
}

func (r *fakeAuditRepo) Create(_ context.Context, entry models.AuditLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	entry.ID = "audit-" + strconv.Itoa(len(r.entries)+1)
	r.entries = append(r.entries, &entry)
	return nil
}

func (r *fakeAuditRepo) ListByResources(_ context.Context, resources []string) ([]*models.AuditLog, error) {
	wanted := make(map[string]bool, len(resources))
	for _, resource := range resources {
		wanted[resource] = true
	}
	var out []*models.AuditLog
	for _, entry := range r.entries {
		if wanted[entry.Resource] {
			clone := *entry
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// count returns the number of recorded entries for (action, resource).
func (r *fakeAuditRepo) count(action, resource string) int {
	n := 0
	for _, entry := range r.entries {
		if entry.Action == action && entry.Resource == resource {
			n++
		}
	}
	return n
}

type fakeMedia struct {
	uploads map[string][]byte
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploads: make(map[string][]byte)}
}

func (m *fakeMedia) UploadPublic(_ context.Context, object string, data []byte, _ string) (string, error) {
	m.uploads[object] = data
	return "https://media.test/" + object, nil
}

func (m *fakeMedia) UploadPrivate(_ context.Context, object string, data []byte, _ string) (string, error) {
	m.uploads[object] = data
	return object, nil
}

func (m *fakeMedia) SignedURL(object string, _ time.Duration) (string, error) {
	return "https://media.test/signed/" + object, nil
}

type fakeSender struct {
	sent    []string
	sendErr error
}

func (s *fakeSender) Send(to, body, mediaURL string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, to+"|"+body+"|"+mediaURL)
	return nil
}

// fakeFaceVerifier stands in for the challenge state machine in report
// service tests.
type fakeFaceVerifier struct {
	granted map[string]bool
}

func (v *fakeFaceVerifier) SubmitFrame(context.Context, string, string, []float64, float64) (*FrameResult, error) {
	return nil, errors.New("not implemented")
}

func (v *fakeFaceVerifier) Stop(string, string) {}

func (v *fakeFaceVerifier) HasGrant(userID, reportID string) bool {
	return v.granted[userID+"|"+reportID]
}
