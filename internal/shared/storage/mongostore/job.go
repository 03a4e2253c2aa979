package mongostore

import (
	"context"
	"time"

	"hiring-portal/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// JobStore
// ============================================================================

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	return insertOne(ctx, s.col(ColJobs), job)
}

func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return findOne[model.Job](ctx, s.col(ColJobs), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
	filter := bson.D{}
	if status != "" {
		filter = bson.D{{Key: "status", Value: status}}
	}
	return findMany[model.Job](ctx, s.col(ColJobs), filter, newestFirst)
}

func (s *Store) ListJobsByEmployer(ctx context.Context, employerID string) ([]*model.Job, error) {
	return findMany[model.Job](ctx, s.col(ColJobs), bson.D{{Key: "employer_id", Value: employerID}}, newestFirst)
}

// UpdateJobStatus 以 (id, employer_id, status) 为条件的单文档原子更新
func (s *Store) UpdateJobStatus(ctx context.Context, id, employerID string, from, to model.JobStatus, at time.Time) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "employer_id", Value: employerID},
		{Key: "status", Value: from},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "updated_at", Value: at},
	}}}
	return updateWhere(ctx, s.col(ColJobs), filter, update)
}

// SetApplicationsCount 以 (id, applications_count) 为条件写入，期间有 $inc 落地则 ErrConflict
func (s *Store) SetApplicationsCount(ctx context.Context, id string, from, to int) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "applications_count", Value: from},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "applications_count", Value: to}}}}
	return updateWhere(ctx, s.col(ColJobs), filter, update)
}
