package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/apiserver/auth"
	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage/storagetest"
	"hiring-portal/pkg/logging"
)

func newTestService(t *testing.T) (*Service, *objstore.Memory, *auth.Actor) {
	t.Helper()
	store := storagetest.NewSQLite(t)
	blobs := objstore.NewMemory()
	resumes := objstore.NewResumeStore(blobs, config.UploadConfig{
		MaxResumeBytes:    1024,
		AllowedExtensions: []string{".pdf"},
	}, time.Second)
	actor := auth.ActorFromUser(storagetest.SeedUser(t, store, "usr-1", model.UserRoleSeeker))
	return NewService(store, resumes, logging.Discard()), blobs, actor
}

func resumeUpload(body string) *objstore.Upload {
	return &objstore.Upload{FileName: "cv.pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, actor := newTestService(t)
	ctx := context.Background()

	user, err := svc.Update(ctx, actor, UpdateInput{
		Name:    " Ana ",
		Profile: model.UserProfile{Phone: "0812", Bio: "Gopher", Website: "https://ana.dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "Gopher", user.Profile.Bio)
	assert.Equal(t, model.UserRoleSeeker, user.Role)
	assert.Equal(t, "usr-1@example.com", user.Email)
	assert.False(t, user.PhoneVerified)

	_, err = svc.Update(ctx, actor, UpdateInput{Name: ""})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, actor, UpdateInput{Name: "Ana", Profile: model.UserProfile{Website: "ftp://x"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Get(ctx, nil)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestReplaceResume(t *testing.T) {
	svc, blobs, actor := newTestService(t)
	ctx := context.Background()

	first, err := svc.ReplaceResume(ctx, actor, resumeUpload("v1"))
	require.NoError(t, err)
	require.NotNil(t, first.Resume)
	oldBlob := first.Resume.BlobID
	assert.True(t, blobs.Has(oldBlob))

	second, err := svc.ReplaceResume(ctx, actor, resumeUpload("v2"))
	require.NoError(t, err)
	assert.NotEqual(t, oldBlob, second.Resume.BlobID)
	assert.False(t, blobs.Has(oldBlob))
	assert.Equal(t, 1, blobs.Len())

	got, err := svc.Get(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, second.Resume.BlobID, got.Resume.BlobID)

	_, err = svc.ReplaceResume(ctx, actor, &objstore.Upload{FileName: "cv.png", Size: 2, Body: strings.NewReader("xx")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
