package repository

import (
	"context"
	"database/sql"
	"time"

	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/storage"
	"hiring-portal/internal/shared/storage/dbutil"
)

const userColumns = `id, name, email, password_hash, role, organization, profile, resume,
	phone_verified, phone_verified_at, verified_phone, email_verified, created_at, updated_at`

// scanUser 扫描一行用户记录
func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var profile string
	var resume sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Organization,
		&profile, &resume, &u.PhoneVerified, &verifiedAt, &u.VerifiedPhone, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(profile, &u.Profile); err != nil {
		return nil, err
	}
	if resume.Valid && resume.String != "" {
		u.Resume = &model.ResumeRef{}
		if err := fromJSON(resume.String, u.Resume); err != nil {
			return nil, err
		}
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.PhoneVerifiedAt = &t
	}
	return u, nil
}

// CreateUser 创建用户，邮箱重复返回 ErrDuplicate
func (r *Store) CreateUser(ctx context.Context, user *model.User) error {
	profile, err := toJSON(user.Profile)
	if err != nil {
		return err
	}
	var resume sql.NullString
	if user.Resume != nil {
		data, err := toJSON(user.Resume)
		if err != nil {
			return err
		}
		resume = sql.NullString{String: data, Valid: true}
	}
	var verifiedAt sql.NullTime
	if user.PhoneVerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: user.PhoneVerifiedAt.UTC(), Valid: true}
	}
	_, err = r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`),
		user.ID, user.Name, model.NormalizeEmail(user.Email), user.PasswordHash, user.Role, user.Organization,
		profile, resume, user.PhoneVerified, verifiedAt, user.VerifiedPhone, user.EmailVerified,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	return r.wrapError(err)
}

// GetUserByEmail 通过邮箱查找用户（大小写不敏感）
func (r *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, model.NormalizeEmail(email))
}

// GetUserByID 通过 ID 查找用户
func (r *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *Store) getUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.rebind(query), args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUsersByIDs 批量查询用户，用于列表补全展示信息
func (r *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE id IN (`+dbutil.PlaceholderList(1, len(ids))+`)`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// UpdateUserPassword 更新用户密码
func (r *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return r.execAffected(ctx, r.db, storage.ErrNotFound,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), id)
}

// UpdateUserProfile 更新姓名与资料（角色、邮箱不在此修改）
func (r *Store) UpdateUserProfile(ctx context.Context, id, name string, profile model.UserProfile) error {
	data, err := toJSON(profile)
	if err != nil {
		return err
	}
	return r.execAffected(ctx, r.db, storage.ErrNotFound,
		`UPDATE users SET name = $1, profile = $2, updated_at = $3 WHERE id = $4`,
		name, data, time.Now().UTC(), id)
}

// UpdateUserResume 替换个人资料中的简历引用
func (r *Store) UpdateUserResume(ctx context.Context, id string, resume *model.ResumeRef) error {
	var data sql.NullString
	if resume != nil {
		s, err := toJSON(resume)
		if err != nil {
			return err
		}
		data = sql.NullString{String: s, Valid: true}
	}
	return r.execAffected(ctx, r.db, storage.ErrNotFound,
		`UPDATE users SET resume = $1, updated_at = $2 WHERE id = $3`,
		data, time.Now().UTC(), id)
}

// MarkPhoneVerified 标记手机号已验证
func (r *Store) MarkPhoneVerified(ctx context.Context, id, phone string, at time.Time) error {
	return r.execAffected(ctx, r.db, storage.ErrNotFound,
		`UPDATE users SET phone_verified = $1, phone_verified_at = $2, verified_phone = $3, updated_at = $4 WHERE id = $5`,
		true, at.UTC(), phone, at.UTC(), id)
}

// MarkEmailVerified 标记邮箱已验证
func (r *Store) MarkEmailVerified(ctx context.Context, id string) error {
	return r.execAffected(ctx, r.db, storage.ErrNotFound,
		`UPDATE users SET email_verified = $1, updated_at = $2 WHERE id = $3`,
		true, time.Now().UTC(), id)
}
