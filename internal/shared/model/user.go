package model

import (
	"strings"
	"time"
)

// UserRole 用户角色（创建后不可变更）
type UserRole string

const (
	UserRoleSeeker    UserRole = "seeker"
	UserRoleRecruiter UserRole = "recruiter"
)

// Valid 是否为合法角色
func (r UserRole) Valid() bool {
	return r == UserRoleSeeker || r == UserRoleRecruiter
}

// UserProfile 用户资料（仅本人可修改）
type UserProfile struct {
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio     string `json:"bio,omitempty" bson:"bio,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Website string `json:"website,omitempty" bson:"website,omitempty"`
}

// User 用户
type User struct {
	ID           string       `json:"id" bson:"_id" db:"id"`
	Name         string       `json:"name" bson:"name" db:"name"`
	Email        string       `json:"email" bson:"email" db:"email"`
	PasswordHash string       `json:"-" bson:"password_hash" db:"password_hash"` // never expose in JSON
	Role         UserRole     `json:"role" bson:"role" db:"role"`
	Organization string       `json:"organization,omitempty" bson:"organization,omitempty" db:"organization"`
	Profile      UserProfile  `json:"profile" bson:"profile" db:"profile"`
	Resume       *ResumeRef   `json:"resume,omitempty" bson:"resume,omitempty" db:"resume"`

	// 验证状态：仅由手机号验证握手 / 邮箱验证流程修改
	PhoneVerified   bool       `json:"phone_verified" bson:"phone_verified" db:"phone_verified"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty" bson:"phone_verified_at,omitempty" db:"phone_verified_at"`
	VerifiedPhone   string     `json:"verified_phone,omitempty" bson:"verified_phone,omitempty" db:"verified_phone"`
	EmailVerified   bool       `json:"email_verified" bson:"email_verified" db:"email_verified"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// UserSummary 对外公开的用户信息（不含凭据）
type UserSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email,omitempty"`
	Organization string      `json:"organization,omitempty"`
	Profile      UserProfile `json:"profile"`
}

// Summary 返回用户的公开资料
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Organization: u.Organization,
		Profile:      u.Profile,
	}
}

// DisplaySummary 仅包含展示名与组织（用于职位列表，不暴露邮箱）
func (u *User) DisplaySummary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Organization: u.Organization}
}

// NormalizeEmail 邮箱统一小写去空白，唯一性按此比较
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
