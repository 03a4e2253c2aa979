package mongostore

import (
	"context"
	"time"

	"hiring-portal/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: model.NormalizeEmail(email)}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := findMany[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, name string, profile model.UserProfile) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "name", Value: name},
		{Key: "profile", Value: profile},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserResume(ctx context.Context, id string, resume *model.ResumeRef) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "resume", Value: resume},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) MarkPhoneVerified(ctx context.Context, id, phone string, at time.Time) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "phone_verified", Value: true},
		{Key: "phone_verified_at", Value: at},
		{Key: "verified_phone", Value: phone},
		{Key: "updated_at", Value: at},
	})
}

func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "email_verified", Value: true},
		{Key: "updated_at", Value: time.Now()},
	})
}
