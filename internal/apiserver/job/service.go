// Package job 职位领域：发布、列表、上下线切换与申请计数对账
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage"
	"hiring-portal/pkg/logging"
)

// Store 职位服务依赖的存储能力
type Store interface {
	storage.JobStore
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	CountApplicationsByJob(ctx context.Context, jobID string) (int, error)
}

// Service 职位生命周期管理
type Service struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// NewService 创建职位服务
func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// QuestionInput 发布职位时提交的问题定义
type QuestionInput struct {
	Question string             `json:"question"`
	Type     model.QuestionType `json:"type"`
	Options  []string           `json:"options,omitempty"`
	Required bool               `json:"required"`
}

// CreateInput 发布职位参数
type CreateInput struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	Salary          string          `json:"salary"`
	CustomQuestions []QuestionInput `json:"custom_questions"`
}

// ListActive 列出所有在招职位（公开），附带发布者展示名与组织
func (s *Service) ListActive(ctx context.Context) ([]*model.JobListing, error) {
	jobs, err := s.store.ListJobsByStatus(ctx, model.JobStatusActive)
	if err != nil {
		return nil, apperr.Internal(err, "list active jobs")
	}

	ids := make([]string, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if !seen[j.EmployerID] {
			seen[j.EmployerID] = true
			ids = append(ids, j.EmployerID)
		}
	}
	owners, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "load job owners")
	}

	listings := make([]*model.JobListing, 0, len(jobs))
	for _, j := range jobs {
		listings = append(listings, &model.JobListing{Job: j, Employer: owners[j.EmployerID].DisplaySummary()})
	}
	return listings, nil
}

// ListOwned 列出招聘方自己发布的全部职位
func (s *Service) ListOwned(ctx context.Context, actor *auth.Actor) ([]*model.Job, error) {
	actor, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleRecruiter))
	if err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobsByEmployer(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err, "list owned jobs")
	}
	return jobs, nil
}

// Create 发布职位：组织名取自发布者，状态为 active，计数为 0
func (s *Service) Create(ctx context.Context, actor *auth.Actor, in CreateInput) (*model.Job, error) {
	actor, err := auth.Authorize(actor, auth.RequireRole(model.UserRoleRecruiter))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return nil, apperr.Validation("title and description are required")
	}

	questions, err := buildQuestions(in.CustomQuestions)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &model.Job{
		ID:              "job-" + uuid.NewString(),
		Title:           title,
		Organization:    actor.Organization,
		Description:     desc,
		Location:        strings.TrimSpace(in.Location),
		Salary:          strings.TrimSpace(in.Salary),
		CustomQuestions: questions,
		Status:          model.JobStatusActive,
		EmployerID:      actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, apperr.Internal(err, "create job")
	}

	metrics.JobsCreated.Inc()
	s.logger.Event(ctx, "job created", slog.String("job_id", job.ID), slog.Int("questions", len(questions)))
	return job, nil
}

// buildQuestions 校验问题定义并按顺序分配 q1..qN
func buildQuestions(inputs []QuestionInput) ([]model.CustomQuestion, error) {
	questions := make([]model.CustomQuestion, 0, len(inputs))
	for i, in := range inputs {
		q := model.CustomQuestion{
			ID:       fmt.Sprintf("q%d", i+1),
			Question: strings.TrimSpace(in.Question),
			Type:     in.Type,
			Required: in.Required,
		}
		if q.Type.HasOptions() {
			for _, o := range in.Options {
				if o = strings.TrimSpace(o); o != "" {
					q.Options = append(q.Options, o)
				}
			}
		}
		if err := q.Validate(); err != nil {
			return nil, apperr.Validation("custom question %d: %v", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ToggleStatus 切换 active ↔ inactive
//
// 职位不存在与不属于当前招聘方返回相同的 NotFound。
// 写入以读取时的状态为前置条件，并发切换只有一个生效。
func (s *Service) ToggleStatus(ctx context.Context, actor *auth.Actor, jobID string) (*model.Job, error) {
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

	next, err := job.Status.Toggled()
	if err != nil {
		if errors.Is(err, model.ErrJobClosed) {
			return nil, apperr.InvalidTransition("job is closed and cannot be toggled")
		}
		return nil, apperr.InvalidTransition("job status %q cannot be toggled", job.Status)
	}

	now := s.now().UTC()
	if err := s.store.UpdateJobStatus(ctx, job.ID, actor.ID, job.Status, next, now); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict("job status changed concurrently, retry")
		}
		return nil, apperr.Internal(err, "update job status")
	}

	job.Status = next
	job.UpdatedAt = now
	metrics.JobStatusChanges.WithLabelValues(string(next)).Inc()
	s.logger.Event(ctx, "job status toggled", slog.String("job_id", job.ID), slog.String("status", string(next)))
	return job, nil
}
