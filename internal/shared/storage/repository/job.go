package repository

import (
	"context"
	"database/sql"
	"time"

	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage"
)

const jobColumns = `id, title, organization, description, location, salary, custom_questions,
	status, applications_count, employer_id, created_at, updated_at`

func scanJob(row scanner) (*model.Job, error) {
	j := &model.Job{}
	var questions string
	err := row.Scan(&j.ID, &j.Title, &j.Organization, &j.Description, &j.Location, &j.Salary,
		&questions, &j.Status, &j.ApplicationsCount, &j.EmployerID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(questions, &j.CustomQuestions); err != nil {
		return nil, err
	}
	return j, nil
}

// CreateJob 创建职位
func (r *Store) CreateJob(ctx context.Context, job *model.Job) error {
	questions := job.CustomQuestions
	if questions == nil {
		questions = []model.CustomQuestion{}
	}
	data, err := toJSON(questions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`),
		job.ID, job.Title, job.Organization, job.Description, job.Location, job.Salary, data,
		job.Status, job.ApplicationsCount, job.EmployerID, job.CreatedAt.UTC(), job.UpdatedAt.UTC(),
	)
	return r.wrapError(err)
}

// GetJob 获取职位
func (r *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+jobColumns+` FROM jobs WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

// ListJobsByStatus 按状态列出职位，status 为空时列出全部
func (r *Store) ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
	if status == "" {
		return r.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC`)
	}
	return r.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = $1 ORDER BY created_at DESC, id DESC`, status)
}

// ListJobsByEmployer 列出招聘方发布的全部职位
func (r *Store) ListJobsByEmployer(ctx context.Context, employerID string) ([]*model.Job, error) {
	return r.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC, id DESC`, employerID)
}

func (r *Store) listJobs(ctx context.Context, query string, args ...any) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus 条件更新职位状态
func (r *Store) UpdateJobStatus(ctx context.Context, id, employerID string, from, to model.JobStatus, at time.Time) error {
	return r.execAffected(ctx, r.db, storage.ErrConflict,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3 AND employer_id = $4 AND status = $5`,
		to, at.UTC(), id, employerID, from)
}

// SetApplicationsCount 以读取到的计数为前置条件修正申请计数
func (r *Store) SetApplicationsCount(ctx context.Context, id string, from, to int) error {
	return r.execAffected(ctx, r.db, storage.ErrConflict,
		`UPDATE jobs SET applications_count = $1 WHERE id = $2 AND applications_count = $3`, to, id, from)
}
