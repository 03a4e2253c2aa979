package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage/repository"
	"hiring-portal/internal/shared/storage/storagetest"
	"hiring-portal/pkg/logging"
)

type testEnv struct {
	svc   *Service
	store *repository.Store
	blobs *objstore.Memory
	rec   *auth.Actor
	job   *model.Job
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storagetest.NewSQLite(t)
	blobs := objstore.NewMemory()
	resumes := objstore.NewResumeStore(blobs, config.UploadConfig{
		MaxResumeBytes:    1024,
		AllowedExtensions: []string{".pdf", ".doc", ".docx"},
	}, time.Second)

	rec := auth.ActorFromUser(storagetest.SeedUser(t, store, "rec-1", model.UserRoleRecruiter))
	now := time.Now().UTC()
	job := &model.Job{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Description: "Build APIs",
		CustomQuestions: []model.CustomQuestion{
			{ID: "q1", Question: "Why us?", Type: model.QuestionTypeText, Required: true},
			{ID: "q2", Question: "Stack", Type: model.QuestionTypeCheckbox, Options: []string{"Go", "Rust"}},
			{ID: "q3", Question: "Seniority", Type: model.QuestionTypeSelect, Options: []string{"Junior", "Senior"}},
		},
		Status:     model.JobStatusActive,
		EmployerID: rec.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.CreateJob(context.Background(), job))

	return &testEnv{
		svc:   NewService(store, resumes, logging.Discard()),
		store: store,
		blobs: blobs,
		rec:   rec,
		job:   job,
	}
}

func (e *testEnv) seeker(t *testing.T, id string) *auth.Actor {
	t.Helper()
	return auth.ActorFromUser(storagetest.SeedUser(t, e.store, id, model.UserRoleSeeker))
}

func pdf() *objstore.Upload {
	body := "%PDF-1.4"
	return &objstore.Upload{FileName: "cv.pdf", Size: int64(len(body)), ContentType: "application/pdf", Body: strings.NewReader(body)}
}

func goodAnswers() []model.Answer {
	return []model.Answer{{QuestionID: "q1", Text: " Great team "}}
}

func TestSubmit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	app, err := e.svc.Submit(ctx, seeker, e.job.ID, []model.Answer{
		{QuestionID: "q2", Choices: []string{"Go"}},
		{QuestionID: "q1", Text: " Great team "},
	}, pdf())
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	assert.Equal(t, e.rec.ID, app.EmployerID)
	require.Len(t, app.Answers, 2)
	assert.Equal(t, model.Answer{QuestionID: "q1", Question: "Why us?", Text: "Great team"}, app.Answers[0])
	assert.Equal(t, []string{"Go"}, app.Answers[1].Choices)
	assert.True(t, e.blobs.Has(app.Resume.BlobID))

	job, err := e.store.GetJob(ctx, e.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.ApplicationsCount)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	_, err := e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	require.NoError(t, err)

	_, err = e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, e.blobs.Len())

	job, err := e.store.GetJob(ctx, e.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.ApplicationsCount)
}

func TestSubmitCountsDistinctApplicants(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	const n = 4
	for i := 0; i < n; i++ {
		_, err := e.svc.Submit(ctx, e.seeker(t, fmt.Sprintf("usr-%d", i)), e.job.ID, goodAnswers(), pdf())
		require.NoError(t, err)
	}

	job, err := e.store.GetJob(ctx, e.job.ID)
	require.NoError(t, err)
	assert.Equal(t, n, job.ApplicationsCount)

	count, err := e.store.CountApplicationsByJob(ctx, e.job.ID)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	tests := []struct {
		name    string
		answers []model.Answer
	}{
		{"required question missing", nil},
		{"required question blank", []model.Answer{{QuestionID: "q1", Text: "   "}}},
		{"unknown question", append(goodAnswers(), model.Answer{QuestionID: "q9", Text: "x"})},
		{"choice not an option", append(goodAnswers(), model.Answer{QuestionID: "q2", Choices: []string{"Java"}})},
		{"select not an option", append(goodAnswers(), model.Answer{QuestionID: "q3", Text: "Principal"})},
		{"duplicate answer", append(goodAnswers(), model.Answer{QuestionID: "q1", Text: "again"})},
		{"required text answered with choices", []model.Answer{{QuestionID: "q1", Choices: []string{"anything"}}}},
		{"checkbox answered with text", append(goodAnswers(), model.Answer{QuestionID: "q2", Text: "not-an-option"})},
		{"select answered with choices", append(goodAnswers(), model.Answer{QuestionID: "q3", Choices: []string{"Senior"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Submit(ctx, seeker, e.job.ID, tt.answers, pdf())
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	bad := pdf()
	bad.FileName = "cv.exe"
	_, err := e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, 0, e.blobs.Len())
}

func TestSubmitRequiredCheckbox(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	now := time.Now().UTC()
	job := &model.Job{
		ID:          "job-2",
		Title:       "Platform Engineer",
		Description: "Run clusters",
		CustomQuestions: []model.CustomQuestion{
			{ID: "q1", Question: "Stack", Type: model.QuestionTypeCheckbox, Options: []string{"Go", "Rust"}, Required: true},
		},
		Status:     model.JobStatusActive,
		EmployerID: e.rec.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.store.CreateJob(ctx, job))

	for _, answers := range [][]model.Answer{
		{{QuestionID: "q1", Text: "Go"}},
		{{QuestionID: "q1", Choices: []string{" "}}},
	} {
		_, err := e.svc.Submit(ctx, seeker, job.ID, answers, pdf())
		assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	}

	app, err := e.svc.Submit(ctx, seeker, job.ID, []model.Answer{{QuestionID: "q1", Choices: []string{"Rust"}}}, pdf())
	require.NoError(t, err)
	require.Len(t, app.Answers, 1)
	assert.Equal(t, []string{"Rust"}, app.Answers[0].Choices)
	assert.Empty(t, app.Answers[0].Text)
}

func TestSubmitRejectsInactiveJobAndRecruiter(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	_, err := e.svc.Submit(ctx, e.rec, e.job.ID, goodAnswers(), pdf())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = e.svc.Submit(ctx, seeker, "job-missing", goodAnswers(), pdf())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, e.store.UpdateJobStatus(ctx, e.job.ID, e.rec.ID, model.JobStatusActive, model.JobStatusInactive, time.Now()))
	_, err = e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSubmitUploadFailureLeavesNoRecord(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")
	e.blobs.PutErr = errors.New("minio unavailable")

	_, err := e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	existing, err := e.store.GetApplicationByJobAndApplicant(ctx, e.job.ID, seeker.ID)
	require.NoError(t, err)
	assert.Nil(t, existing)

	job, err := e.store.GetJob(ctx, e.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, job.ApplicationsCount)
}

func TestListViews(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	first := e.seeker(t, "usr-1")
	second := e.seeker(t, "usr-2")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range []*auth.Actor{first, second} {
		at := base.Add(time.Duration(i) * time.Minute)
		e.svc.now = func() time.Time { return at }
		_, err := e.svc.Submit(ctx, s, e.job.ID, goodAnswers(), pdf())
		require.NoError(t, err)
	}

	views, err := e.svc.ListForJob(ctx, e.rec, e.job.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "usr-2", views[0].ApplicantID)
	require.NotNil(t, views[0].Applicant)
	assert.Equal(t, "usr-2@example.com", views[0].Applicant.Email)

	other := auth.ActorFromUser(storagetest.SeedUser(t, e.store, "rec-2", model.UserRoleRecruiter))
	_, err = e.svc.ListForJob(ctx, other, e.job.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	mine, err := e.svc.ListForApplicant(ctx, first)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Job)
	assert.Equal(t, "Backend Engineer", mine[0].Job.Title)
	require.NotNil(t, mine[0].Employer)
	assert.Equal(t, "Org rec-1", mine[0].Employer.Organization)
	assert.Empty(t, mine[0].Employer.Email)

	_, err = e.svc.ListForApplicant(ctx, e.rec)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateStatus(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	app, err := e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	require.NoError(t, err)

	notes := " shortlisted "
	got, err := e.svc.UpdateStatus(ctx, e.rec, app.ID, model.ApplicationStatusReviewed, &notes)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusReviewed, got.Status)
	assert.Equal(t, "shortlisted", got.Notes)

	got, err = e.svc.UpdateStatus(ctx, e.rec, app.ID, model.ApplicationStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, got.Status)

	for _, to := range []model.ApplicationStatus{model.ApplicationStatusRejected, model.ApplicationStatusReviewed, model.ApplicationStatusPending} {
		_, err = e.svc.UpdateStatus(ctx, e.rec, app.ID, to, nil)
		assert.True(t, apperr.Is(err, apperr.KindInvalidTransition), "to %s", to)
	}

	stored, err := e.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, stored.Status)
	assert.Equal(t, "shortlisted", stored.Notes)
}

func TestUpdateStatusMasksNonEmployer(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeker := e.seeker(t, "usr-1")

	app, err := e.svc.Submit(ctx, seeker, e.job.ID, goodAnswers(), pdf())
	require.NoError(t, err)

	other := auth.ActorFromUser(storagetest.SeedUser(t, e.store, "rec-2", model.UserRoleRecruiter))
	_, err = e.svc.UpdateStatus(ctx, other, app.ID, model.ApplicationStatusReviewed, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.svc.UpdateStatus(ctx, seeker, app.ID, model.ApplicationStatusAccepted, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.svc.UpdateStatus(ctx, e.rec, "app-missing", model.ApplicationStatusReviewed, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.svc.UpdateStatus(ctx, e.rec, app.ID, "archived", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
