// Package application 职位申请：提交、列表与状态流转
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage"
	"hiring-portal/pkg/logging"
)

// Store 申请服务依赖的存储能力
type Store interface {
	storage.ApplicationStore
	GetJob(ctx context.Context, id string) (*model.Job, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// Resumes 简历文件的保存与清理
type Resumes interface {
	Check(u *objstore.Upload) error
	Save(ctx context.Context, userID string, u *objstore.Upload) (*model.ResumeRef, error)
	Discard(ctx context.Context, blobID string)
}

// Service 申请生命周期管理
type Service struct {
	store   Store
	resumes Resumes
	logger  *logging.Logger
	now     func() time.Time
}

// NewService 创建申请服务
func NewService(store Store, resumes Resumes, logger *logging.Logger) *Service {
	return &Service{store: store, resumes: resumes, logger: logger, now: time.Now}
}

// Submit 求职者提交申请
//
// 仅 active 职位可申请；同一职位重复申请返回 Conflict。
// 简历先于记录上传，记录创建失败时删除已上传的文件。
func (s *Service) Submit(ctx context.Context, actor *auth.Actor, jobID string, answers []model.Answer, resume *objstore.Upload) (*model.Application, error) {
	actor, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleSeeker))
	if err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err, "get job")
	}
	if job == nil || !job.IsActive() {
		return nil, s.rejected(apperr.NotFound("job not found"))
	}

	existing, err := s.store.GetApplicationByJobAndApplicant(ctx, job.ID, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err, "check existing application")
	}
	if existing != nil {
		metrics.ApplicationsSubmitted.WithLabelValues("conflict").Inc()
		return nil, apperr.Conflict("you have already applied to this job")
	}

	normalized, err := validateAnswers(job, answers)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.resumes.Check(resume); err != nil {
		return nil, s.rejected(err)
	}

	ref, err := s.resumes.Save(ctx, actor.ID, resume)
	if err != nil {
		metrics.ApplicationsSubmitted.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	now := s.now().UTC()
	app := &model.Application{
		ID:          "app-" + uuid.NewString(),
		JobID:       job.ID,
		ApplicantID: actor.ID,
		EmployerID:  job.EmployerID,
		Answers:     normalized,
		Resume:      *ref,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		s.resumes.Discard(ctx, ref.BlobID)
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			metrics.ApplicationsSubmitted.WithLabelValues("conflict").Inc()
			return nil, apperr.Conflict("you have already applied to this job")
		case errors.Is(err, storage.ErrNotFound):
			return nil, s.rejected(apperr.NotFound("job not found"))
		}
		return nil, apperr.Internal(err, "create application")
	}

	metrics.ApplicationsSubmitted.WithLabelValues("created").Inc()
	s.logger.Event(ctx, "application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", job.ID),
	)
	return app, nil
}

func (s *Service) rejected(err error) error {
	metrics.ApplicationsSubmitted.WithLabelValues("rejected").Inc()
	return err
}

// validateAnswers 校验回答并按职位问题顺序输出，附带问题文本快照
//
// 回答形态须与问题类型一致：checkbox 只接受 Choices，其余类型只接受 Text。
// 必答判断基于规范化之后的值。
func validateAnswers(job *model.Job, answers []model.Answer) ([]model.Answer, error) {
	byID := make(map[string]model.Answer, len(answers))
	for _, a := range answers {
		q := job.Question(a.QuestionID)
		if q == nil {
			return nil, apperr.Validation("unknown question %q", a.QuestionID)
		}
		if _, dup := byID[a.QuestionID]; dup {
			return nil, apperr.Validation("question %q answered more than once", a.QuestionID)
		}
		byID[a.QuestionID] = a
	}

	out := make([]model.Answer, 0, len(byID))
	for i := range job.CustomQuestions {
		q := &job.CustomQuestions[i]
		normalized := model.Answer{QuestionID: q.ID, Question: q.Question}
		if a, ok := byID[q.ID]; ok {
			if err := normalizeAnswer(q, a, &normalized); err != nil {
				return nil, err
			}
		}
		if normalized.IsEmpty() {
			if q.Required {
				return nil, apperr.Validation("question %q is required", q.Question)
			}
			continue
		}
		out = append(out, normalized)
	}
	return out, nil
}

// normalizeAnswer 按问题类型取值并校验选项
func normalizeAnswer(q *model.CustomQuestion, a model.Answer, out *model.Answer) error {
	if q.Type == model.QuestionTypeCheckbox {
		if strings.TrimSpace(a.Text) != "" {
			return apperr.Validation("question %q expects choices, not text", q.Question)
		}
		for _, c := range a.Choices {
			if c = strings.TrimSpace(c); c == "" {
				continue
			}
			if !q.HasOption(c) {
				return apperr.Validation("question %q: %q is not an option", q.Question, c)
			}
			out.Choices = append(out.Choices, c)
		}
		return nil
	}

	if len(a.Choices) > 0 {
		return apperr.Validation("question %q expects text, not choices", q.Question)
	}
	v := strings.TrimSpace(a.Text)
	if v != "" && q.Type.HasOptions() && !q.HasOption(v) {
		return apperr.Validation("question %q: %q is not an option", q.Question, v)
	}
	out.Text = v
	return nil
}

// ListForJob 职位所有者查看申请，附带申请人公开资料
func (s *Service) ListForJob(ctx context.Context, actor *auth.Actor, jobID string) ([]*model.ApplicationView, error) {
	actor, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleRecruiter))
	if err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err, "get job")
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}
	if _, err := auth.Authorize(actor, auth.RequireOwner(job.EmployerID)); err != nil {
		return nil, auth.Conceal(err, "job not found")
	}

	apps, err := s.store.ListApplicationsByJob(ctx, job.ID)
	if err != nil {
		return nil, apperr.Internal(err, "list applications")
	}

	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ApplicantID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "load applicants")
	}

	views := make([]*model.ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, &model.ApplicationView{Application: a, Applicant: users[a.ApplicantID].Summary()})
	}
	return views, nil
}

// ListForApplicant 求职者查看自己的申请，附带职位快照与招聘方信息
func (s *Service) ListForApplicant(ctx context.Context, actor *auth.Actor) ([]*model.ApplicationView, error) {
	actor, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleSeeker))
	if err != nil {
		return nil, err
	}

	apps, err := s.store.ListApplicationsByApplicant(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err, "list applications")
	}

	jobs := make(map[string]*model.Job, len(apps))
	var employerIDs []string
	for _, a := range apps {
		if _, ok := jobs[a.JobID]; ok {
			continue
		}
		j, err := s.store.GetJob(ctx, a.JobID)
		if err != nil {
			return nil, apperr.Internal(err, "get job")
		}
		jobs[a.JobID] = j
		employerIDs = append(employerIDs, a.EmployerID)
	}
	employers, err := s.store.GetUsersByIDs(ctx, employerIDs)
	if err != nil {
		return nil, apperr.Internal(err, "load employers")
	}

	views := make([]*model.ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, &model.ApplicationView{
			Application: a,
			Job:         jobs[a.JobID].Snapshot(),
			Employer:    employers[a.EmployerID].DisplaySummary(),
		})
	}
	return views, nil
}

// UpdateStatus 招聘方推进申请状态
//
// 非该申请的招聘方一律返回 NotFound。写入以读取时的状态为前置条件。
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Actor, appID string, to model.ApplicationStatus, notes *string) (*model.Application, error) {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, apperr.Validation("unknown application status %q", to)
	}

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, apperr.Internal(err, "get application")
	}
	if app == nil {
		return nil, apperr.NotFound("application not found")
	}
	if _, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleRecruiter), auth.RequireOwner(app.EmployerID)); err != nil {
		return nil, auth.Conceal(err, "application not found")
	}

	from := app.Status
	if !from.CanTransitionTo(to) {
		return nil, apperr.InvalidTransition("cannot move application from %s to %s", from, to)
	}

	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
	}

	now := s.now().UTC()
	if err := s.store.UpdateApplicationStatus(ctx, app.ID, actor.ID, from, to, notes, now); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict("application status changed concurrently, retry")
		}
		return nil, apperr.Internal(err, "update application status")
	}

	app.Status = to
	app.UpdatedAt = now
	if notes != nil {
		app.Notes = *notes
	}
	metrics.ApplicationStatusChanges.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Event(ctx, "application status changed",
		slog.String("application_id", app.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return app, nil
}
