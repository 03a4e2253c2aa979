// Package profile 个人资料：查看、修改与简历替换
package profile

import (
	"context"
	"log/slog"
	"strings"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/pkg/logging"
)

// Store 资料服务依赖的用户存储
type Store interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, name string, profile model.UserProfile) error
	UpdateUserResume(ctx context.Context, id string, resume *model.ResumeRef) error
}

// Resumes 简历文件的保存与清理
type Resumes interface {
	Save(ctx context.Context, userID string, u *objstore.Upload) (*model.ResumeRef, error)
	Discard(ctx context.Context, blobID string)
}

// Service 资料服务，只操作当前用户自己的记录
type Service struct {
	store   Store
	resumes Resumes
	logger  *logging.Logger
}

// NewService 创建资料服务
func NewService(store Store, resumes Resumes, logger *logging.Logger) *Service {
	return &Service{store: store, resumes: resumes, logger: logger}
}

// UpdateInput 可修改的资料字段，角色与邮箱不可在此修改
type UpdateInput struct {
	Name    string            `json:"name"`
	Profile model.UserProfile `json:"profile"`
}

// Get 返回当前用户
func (s *Service) Get(ctx context.Context, actor *auth.Actor) (*model.User, error) {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, actor.ID)
}

// Update 修改姓名与资料
func (s *Service) Update(ctx context.Context, actor *auth.Actor, in UpdateInput) (*model.User, error) {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	p := model.UserProfile{
		Phone:   strings.TrimSpace(in.Profile.Phone),
		Bio:     strings.TrimSpace(in.Profile.Bio),
		Address: strings.TrimSpace(in.Profile.Address),
		Website: strings.TrimSpace(in.Profile.Website),
	}
	if p.Website != "" && !strings.HasPrefix(p.Website, "http://") && !strings.HasPrefix(p.Website, "https://") {
		return nil, apperr.Validation("website must start with http:// or https://")
	}

	if err := s.store.UpdateUserProfile(ctx, actor.ID, name, p); err != nil {
		return nil, apperr.Internal(err, "update profile")
	}
	s.logger.Event(ctx, "profile updated")
	return s.load(ctx, actor.ID)
}

// ReplaceResume 上传新简历并替换引用，旧文件尽力删除
func (s *Service) ReplaceResume(ctx context.Context, actor *auth.Actor, upload *objstore.Upload) (*model.User, error) {
	actor, err := auth.Authorize(actor)
	if err != nil {
		return nil, err
	}

	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	ref, err := s.resumes.Save(ctx, actor.ID, upload)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserResume(ctx, actor.ID, ref); err != nil {
		s.resumes.Discard(ctx, ref.BlobID)
		return nil, apperr.Internal(err, "update resume")
	}
	if user.Resume != nil {
		s.resumes.Discard(ctx, user.Resume.BlobID)
	}

	s.logger.Event(ctx, "profile resume replaced", slog.String("blob_id", ref.BlobID))
	user.Resume = ref
	return user, nil
}

func (s *Service) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "lookup user")
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
