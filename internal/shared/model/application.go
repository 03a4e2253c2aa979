package model

import (
	"strings"
	"time"
)

// ApplicationStatus 申请状态
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted" // 终态
	ApplicationStatusRejected ApplicationStatus = "rejected" // 终态
)

// applicationTransitions 合法状态迁移图
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusReviewed: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// Valid 是否为已知状态
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// IsTerminal 是否为终态
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// CanTransitionTo 检查 s → to 是否合法
func (s ApplicationStatus) CanTransitionTo(to ApplicationStatus) bool {
	for _, next := range applicationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Answer 对单个自定义问题的回答
// 文本类问题使用 Text，checkbox 等多选问题使用 Choices
type Answer struct {
	QuestionID string   `json:"question_id" bson:"question_id"`
	Question   string   `json:"question,omitempty" bson:"question,omitempty"` // 提交时的问题快照
	Text       string   `json:"text,omitempty" bson:"text,omitempty"`
	Choices    []string `json:"choices,omitempty" bson:"choices,omitempty"`
}

// IsEmpty 回答是否为空
func (a *Answer) IsEmpty() bool {
	if strings.TrimSpace(a.Text) != "" {
		return false
	}
	for _, c := range a.Choices {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ResumeRef 简历文件引用（对象存储）
type ResumeRef struct {
	BlobID     string    `json:"blob_id" bson:"blob_id"`
	URL        string    `json:"url" bson:"url"`
	FileName   string    `json:"file_name" bson:"file_name"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Application 职位申请
type Application struct {
	ID          string            `json:"id" bson:"_id" db:"id"`
	JobID       string            `json:"job_id" bson:"job_id" db:"job_id"`
	ApplicantID string            `json:"applicant_id" bson:"applicant_id" db:"applicant_id"`
	EmployerID  string            `json:"employer_id" bson:"employer_id" db:"employer_id"` // 创建时从职位复制
	Answers     []Answer          `json:"answers" bson:"answers" db:"answers"`
	Resume      ResumeRef         `json:"resume" bson:"resume" db:"resume"`
	Status      ApplicationStatus `json:"status" bson:"status" db:"status"`
	Notes       string            `json:"notes,omitempty" bson:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// JobSnapshot 申请人视角的职位快照
type JobSnapshot struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Organization string    `json:"organization"`
	Location     string    `json:"location,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	Status       JobStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot 生成职位快照
func (j *Job) Snapshot() *JobSnapshot {
	if j == nil {
		return nil
	}
	return &JobSnapshot{
		ID:           j.ID,
		Title:        j.Title,
		Organization: j.Organization,
		Location:     j.Location,
		Salary:       j.Salary,
		Status:       j.Status,
		CreatedAt:    j.CreatedAt,
	}
}

// ApplicationView 带关联信息的申请
// 招聘方视角填充 Applicant，申请人视角填充 Job 与 Employer
type ApplicationView struct {
	*Application
	Applicant *UserSummary `json:"applicant,omitempty"`
	Job       *JobSnapshot `json:"job,omitempty"`
	Employer  *UserSummary `json:"employer,omitempty"`
}
