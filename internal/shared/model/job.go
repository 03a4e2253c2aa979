package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus 职位状态
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
	JobStatusClosed   JobStatus = "closed" // 终态
)

// ErrJobClosed 已关闭职位不可切换
var ErrJobClosed = errors.New("job is closed")

// Toggled 返回切换后的状态：active ↔ inactive，closed 不可切换
func (s JobStatus) Toggled() (JobStatus, error) {
	switch s {
	case JobStatusActive:
		return JobStatusInactive, nil
	case JobStatusInactive:
		return JobStatusActive, nil
	case JobStatusClosed:
		return s, ErrJobClosed
	default:
		return s, fmt.Errorf("unknown job status %q", s)
	}
}

// QuestionType 自定义问题的回答类型
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeSelect   QuestionType = "select"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
)

// Valid 是否为已知类型
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeSelect, QuestionTypeRadio, QuestionTypeCheckbox:
		return true
	}
	return false
}

// HasOptions 是否为选项类问题（必须携带非空选项列表）
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSelect || t == QuestionTypeRadio || t == QuestionTypeCheckbox
}

// CustomQuestion 招聘方定义的申请问题
type CustomQuestion struct {
	ID       string       `json:"id" bson:"id"`
	Question string       `json:"question" bson:"question"`
	Type     QuestionType `json:"type" bson:"type"`
	Options  []string     `json:"options,omitempty" bson:"options,omitempty"`
	Required bool         `json:"required" bson:"required"`
}

// Validate 校验单个问题定义
func (q *CustomQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is required")
	}
	if !q.Type.Valid() {
		return fmt.Errorf("question %q: unsupported type %q", q.Question, q.Type)
	}
	if q.Type.HasOptions() {
		n := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o) != "" {
				n++
			}
		}
		if n == 0 {
			return fmt.Errorf("question %q: type %s requires at least one option", q.Question, q.Type)
		}
	}
	return nil
}

// HasOption 选项是否在列表中
func (q *CustomQuestion) HasOption(v string) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Job 职位
type Job struct {
	ID                string           `json:"id" bson:"_id" db:"id"`
	Title             string           `json:"title" bson:"title" db:"title"`
	Organization      string           `json:"organization" bson:"organization" db:"organization"` // 创建时从发布者复制
	Description       string           `json:"description" bson:"description" db:"description"`
	Location          string           `json:"location,omitempty" bson:"location,omitempty" db:"location"`
	Salary            string           `json:"salary,omitempty" bson:"salary,omitempty" db:"salary"`
	CustomQuestions   []CustomQuestion `json:"custom_questions" bson:"custom_questions" db:"custom_questions"`
	Status            JobStatus        `json:"status" bson:"status" db:"status"`
	ApplicationsCount int              `json:"applications_count" bson:"applications_count" db:"applications_count"`
	EmployerID        string           `json:"employer_id" bson:"employer_id" db:"employer_id"` // 创建后不可变
	CreatedAt         time.Time        `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// Question 按 ID 查找问题
func (j *Job) Question(id string) *CustomQuestion {
	for i := range j.CustomQuestions {
		if j.CustomQuestions[i].ID == id {
			return &j.CustomQuestions[i]
		}
	}
	return nil
}

// IsActive 是否接受申请
func (j *Job) IsActive() bool {
	return j.Status == JobStatusActive
}

// JobListing 职位列表项（附带发布者展示信息）
type JobListing struct {
	*Job
	Employer *UserSummary `json:"employer,omitempty"`
}
