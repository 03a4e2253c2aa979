// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 领域服务只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（默认）、repository/（PostgreSQL / SQLite）
//   - 初始化时通过依赖注入传入实现
//
// 约定：
//   - Get* 查询不存在时返回 (nil, nil)
//   - 唯一键冲突统一返回 ErrDuplicate
//   - 条件更新（带前置状态）未命中时返回 ErrConflict
package storage

import (
	"context"
	"time"

	"hiring-portal/internal/shared/model"
)

// UserStore 用户存储接口
//
// email 需有唯一约束（存储层负责，重复时返回 ErrDuplicate）
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserProfile(ctx context.Context, id, name string, profile model.UserProfile) error
	UpdateUserResume(ctx context.Context, id string, resume *model.ResumeRef) error
	MarkPhoneVerified(ctx context.Context, id, phone string, at time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// JobStore 职位存储接口
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// ListJobsByStatus 按状态列出职位，status 为空时列出全部；按创建时间倒序
	ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]*model.Job, error)
	// ListJobsByEmployer 列出招聘方的全部职位；按创建时间倒序
	ListJobsByEmployer(ctx context.Context, employerID string) ([]*model.Job, error)
	// UpdateJobStatus 条件更新：仅当 id、employer_id、当前状态均匹配时生效，否则 ErrConflict
	UpdateJobStatus(ctx context.Context, id, employerID string, from, to model.JobStatus, at time.Time) error
	// SetApplicationsCount 对账时修正申请计数：仅当当前计数仍为 from 时写入 to，否则 ErrConflict
	SetApplicationsCount(ctx context.Context, id string, from, to int) error
}

// ApplicationStore 申请存储接口
//
// (job_id, applicant_id) 需有唯一约束，重复时返回 ErrDuplicate
type ApplicationStore interface {
	// CreateApplication 创建申请并递增职位的 applications_count
	// SQL 实现在同一事务内完成；MongoDB 实现先插入后 $inc，由对账任务兜底
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	GetApplicationByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*model.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]*model.Application, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*model.Application, error)
	// UpdateApplicationStatus 条件更新：仅当 id、employer_id、当前状态均匹配时生效，否则 ErrConflict
	// notes 为 nil 时保留原备注
	UpdateApplicationStatus(ctx context.Context, id, employerID string, from, to model.ApplicationStatus, notes *string, at time.Time) error
	// CountApplicationsByJob 按查询重新统计（对账用）
	CountApplicationsByJob(ctx context.Context, jobID string) (int, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	JobStore
	ApplicationStore
	Close() error
}
