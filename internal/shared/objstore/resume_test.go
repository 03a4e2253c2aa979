package objstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/apperr"
)

func testResumeStore(blobs BlobStore) *ResumeStore {
	return NewResumeStore(blobs, config.UploadConfig{
		MaxResumeBytes:    16,
		AllowedExtensions: []string{".pdf", "docx"},
	}, 0)
}

func upload(name, body string) *Upload {
	return &Upload{FileName: name, Size: int64(len(body)), ContentType: "application/pdf", Body: strings.NewReader(body)}
}

func TestResumeCheck(t *testing.T) {
	s := testResumeStore(NewMemory())

	tests := []struct {
		name string
		u    *Upload
		ok   bool
	}{
		{"pdf", upload("cv.pdf", "data"), true},
		{"extension without dot in config", upload("cv.DOCX", "data"), true},
		{"missing", nil, false},
		{"empty", upload("cv.pdf", ""), false},
		{"too large", upload("cv.pdf", strings.Repeat("x", 17)), false},
		{"wrong type", upload("cv.exe", "data"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Check(tt.u)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
			}
		})
	}
}

func TestResumeSaveAndDiscard(t *testing.T) {
	mem := NewMemory()
	s := testResumeStore(mem)

	ref, err := s.Save(context.Background(), "usr-1", upload("dir/My CV.pdf", "data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.BlobID, "resumes/usr-1/"))
	assert.Equal(t, "My CV.pdf", ref.FileName)
	assert.True(t, mem.Has(ref.BlobID))

	s.Discard(context.Background(), ref.BlobID)
	assert.False(t, mem.Has(ref.BlobID))
}

func TestResumeSaveUpstreamFailure(t *testing.T) {
	mem := NewMemory()
	mem.PutErr = errors.New("connection refused")
	s := testResumeStore(mem)

	_, err := s.Save(context.Background(), "usr-1", upload("cv.pdf", "data"))
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Equal(t, 0, mem.Len())
}
