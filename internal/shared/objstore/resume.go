package objstore

import (
	"context"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/model"
)

// BlobStore 对象存储能力，*Client 与 *Memory 均实现
type BlobStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Blob, error)
	Delete(ctx context.Context, key string) error
}

// Upload 待保存的简历文件
type Upload struct {
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ResumeStore 按上传策略保存简历，所有调用受超时约束
type ResumeStore struct {
	blobs      BlobStore
	maxBytes   int64
	extensions map[string]bool
	timeout    time.Duration
	now        func() time.Time
}

// NewResumeStore 创建简历存储
func NewResumeStore(blobs BlobStore, upload config.UploadConfig, timeout time.Duration) *ResumeStore {
	exts := make(map[string]bool, len(upload.AllowedExtensions))
	for _, e := range upload.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResumeStore{
		blobs:      blobs,
		maxBytes:   upload.MaxResumeBytes,
		extensions: exts,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Check 校验文件名、大小与扩展名
func (s *ResumeStore) Check(u *Upload) error {
	if u == nil || u.Body == nil || u.Size <= 0 {
		return apperr.Validation("resume file is required")
	}
	if s.maxBytes > 0 && u.Size > s.maxBytes {
		return apperr.Validation("resume exceeds %d bytes", s.maxBytes)
	}
	ext := strings.ToLower(path.Ext(u.FileName))
	if len(s.extensions) > 0 && !s.extensions[ext] {
		return apperr.Validation("resume file type %q is not allowed", ext)
	}
	return nil
}

// Save 校验并上传简历；上传失败返回 Upstream
func (s *ResumeStore) Save(ctx context.Context, userID string, u *Upload) (*model.ResumeRef, error) {
	if err := s.Check(u); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := ResumeKey(userID, uuid.NewString(), u.FileName, now)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	blob, err := s.blobs.Put(ctx, key, u.Body, u.Size, u.ContentType)
	metrics.ObserveUpstream("blob_put", start, err)
	if err != nil {
		return nil, apperr.Upstream(err, "resume upload failed")
	}

	return &model.ResumeRef{
		BlobID:     blob.ID,
		URL:        blob.URL,
		FileName:   path.Base(u.FileName),
		UploadedAt: now,
	}, nil
}

// Discard 尽力删除对象，失败只记录日志
func (s *ResumeStore) Discard(ctx context.Context, blobID string) {
	if blobID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	err := s.blobs.Delete(ctx, blobID)
	metrics.ObserveUpstream("blob_delete", start, err)
	if err != nil {
		log.Printf("[objstore] Failed to delete blob %s: %v", blobID, err)
	}
}
