package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage"
)

const applicationColumns = `id, job_id, applicant_id, employer_id, answers, resume, status, notes, created_at, updated_at`

func scanApplication(row scanner) (*model.Application, error) {
	a := &model.Application{}
	var answers, resume string
	err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.EmployerID, &answers, &resume,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(answers, &a.Answers); err != nil {
		return nil, err
	}
	if err := fromJSON(resume, &a.Resume); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateApplication 在同一事务内插入申请并递增职位计数
func (r *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	answers := app.Answers
	if answers == nil {
		answers = []model.Answer{}
	}
	answersJSON, err := toJSON(answers)
	if err != nil {
		return err
	}
	resumeJSON, err := toJSON(app.Resume)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.rebind(
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`),
		app.ID, app.JobID, app.ApplicantID, app.EmployerID, answersJSON, resumeJSON,
		app.Status, app.Notes, app.CreatedAt.UTC(), app.UpdatedAt.UTC(),
	)
	if err != nil {
		return r.wrapError(err)
	}

	if err := r.execAffected(ctx, tx, storage.ErrNotFound,
		`UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`, app.JobID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetApplication 获取申请
func (r *Store) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	return r.getApplication(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
}

// GetApplicationByJobAndApplicant 查询求职者对某职位的申请
func (r *Store) GetApplicationByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*model.Application, error) {
	return r.getApplication(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND applicant_id = $2`, jobID, applicantID)
}

func (r *Store) getApplication(ctx context.Context, query string, args ...any) (*model.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, r.rebind(query), args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// ListApplicationsByJob 列出职位的全部申请
func (r *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	return r.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at DESC, id DESC`, jobID)
}

// ListApplicationsByApplicant 列出求职者的全部申请
func (r *Store) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*model.Application, error) {
	return r.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC, id DESC`, applicantID)
}

func (r *Store) listApplications(ctx context.Context, query string, args ...any) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus 条件更新申请状态，notes 为 nil 时保留原备注
func (r *Store) UpdateApplicationStatus(ctx context.Context, id, employerID string, from, to model.ApplicationStatus, notes *string, at time.Time) error {
	if notes == nil {
		return r.execAffected(ctx, r.db, storage.ErrConflict,
			`UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND employer_id = $4 AND status = $5`,
			to, at.UTC(), id, employerID, from)
	}
	return r.execAffected(ctx, r.db, storage.ErrConflict,
		`UPDATE applications SET status = $1, notes = $2, updated_at = $3 WHERE id = $4 AND employer_id = $5 AND status = $6`,
		to, *notes, at.UTC(), id, employerID, from)
}

// CountApplicationsByJob 统计职位的实际申请数
func (r *Store) CountApplicationsByJob(ctx context.Context, jobID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM applications WHERE job_id = $1`), jobID).Scan(&n)
	return n, err
}
