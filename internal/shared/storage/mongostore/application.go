package mongostore

import (
	"context"
	"log"
	"time"

	"hiring-portal/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// ApplicationStore
// ============================================================================

// CreateApplication 插入申请后对职位计数 $inc
//
// 唯一索引 (job_id, applicant_id) 保证并发重复提交只有一条成功（ErrDuplicate）。
// 独立部署的 MongoDB 不支持多文档事务，计数递增失败时只记录日志，
// 由 job.Service.ReconcileCounts 按查询结果修正。
func (s *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	if err := insertOne(ctx, s.col(ColApplications), app); err != nil {
		return err
	}
	_, err := s.col(ColJobs).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: app.JobID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "applications_count", Value: 1}}}},
	)
	if err != nil {
		log.Printf("[mongostore] WARNING: increment applications_count for job %s failed: %v", app.JobID, err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	return findOne[model.Application](ctx, s.col(ColApplications), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetApplicationByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*model.Application, error) {
	return findOne[model.Application](ctx, s.col(ColApplications), bson.D{
		{Key: "job_id", Value: jobID},
		{Key: "applicant_id", Value: applicantID},
	})
}

func (s *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	return findMany[model.Application](ctx, s.col(ColApplications), bson.D{{Key: "job_id", Value: jobID}}, newestFirst)
}

func (s *Store) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*model.Application, error) {
	return findMany[model.Application](ctx, s.col(ColApplications), bson.D{{Key: "applicant_id", Value: applicantID}}, newestFirst)
}

// UpdateApplicationStatus 以 (id, employer_id, status) 为条件的单文档原子更新
func (s *Store) UpdateApplicationStatus(ctx context.Context, id, employerID string, from, to model.ApplicationStatus, notes *string, at time.Time) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "employer_id", Value: employerID},
		{Key: "status", Value: from},
	}
	set := bson.D{
		{Key: "status", Value: to},
		{Key: "updated_at", Value: at},
	}
	if notes != nil {
		set = append(set, bson.E{Key: "notes", Value: *notes})
	}
	return updateWhere(ctx, s.col(ColApplications), filter, bson.D{{Key: "$set", Value: set}})
}

func (s *Store) CountApplicationsByJob(ctx context.Context, jobID string) (int, error) {
	n, err := s.col(ColApplications).CountDocuments(ctx, bson.D{{Key: "job_id", Value: jobID}})
	if err != nil {
		return 0, wrapError(err)
	}
	return int(n), nil
}
