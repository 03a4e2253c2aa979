package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/model"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage/storagetest"
	"hiring-portal/pkg/logging"
)

type testServer struct {
	t      *testing.T
	router http.Handler
	sender *notify.Recorder
	blobs  *objstore.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Verification.RequestInterval = 0

	sender := &notify.Recorder{}
	blobs := objstore.NewMemory()
	h := NewHandler(Deps{
		Store:    storagetest.NewSQLite(t),
		Cache:    cache.NewMemoryCache(),
		Blobs:    blobs,
		Sender:   sender,
		Config:   cfg,
		Logger:   logging.Discard(),
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{t: t, router: h.Router(), sender: sender, blobs: blobs}
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req, token)
	if out != nil && w.Code < 300 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (s *testServer) register(name, email string, role model.UserRole, org string) string {
	s.t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	code := s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret-password", "role": string(role), "organization": org,
	}, &resp)
	require.Equal(s.t, http.StatusCreated, code)
	require.NotEmpty(s.t, resp.AccessToken)
	return resp.AccessToken
}

func (s *testServer) apply(jobID, token, answers string) int {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(s.t, mw.WriteField("answers", answers))
	fw, err := mw.CreateFormFile("resume", "cv.pdf")
	require.NoError(s.t, err)
	_, err = fw.Write([]byte("%PDF-1.4 resume"))
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+jobID+"/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, token).Code
}

func TestHiringFlow(t *testing.T) {
	s := newTestServer(t)

	recruiter := s.register("Rita", "rita@acme.test", model.UserRoleRecruiter, "Acme")
	seeker := s.register("Sam", "sam@example.com", model.UserRoleSeeker, "")

	var job model.Job
	code := s.json(http.MethodPost, "/api/v1/jobs", recruiter, map[string]any{
		"title":       "Go Engineer",
		"description": "Services",
		"custom_questions": []map[string]any{
			{"question": "Why Go?", "type": "text", "required": true},
		},
	}, &job)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Acme", job.Organization)

	// 求职者不能发布职位
	assert.Equal(t, http.StatusForbidden, s.json(http.MethodPost, "/api/v1/jobs", seeker, map[string]any{
		"title": "x", "description": "y",
	}, nil))

	// 公开列表无需登录
	var listing struct {
		Jobs  []model.JobListing `json:"jobs"`
		Count int                `json:"count"`
	}
	require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/jobs", "", nil, &listing))
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "Rita", listing.Jobs[0].Employer.Name)

	assert.Equal(t, http.StatusCreated, s.apply(job.ID, seeker, `[{"question_id":"q1","text":"Simplicity"}]`))
	assert.Equal(t, http.StatusConflict, s.apply(job.ID, seeker, `[{"question_id":"q1","text":"Again"}]`))

	var apps struct {
		Applications []model.ApplicationView `json:"applications"`
	}
	require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/jobs/"+job.ID+"/applications", recruiter, nil, &apps))
	require.Len(t, apps.Applications, 1)
	appID := apps.Applications[0].ID

	assert.Equal(t, http.StatusNotFound, s.json(http.MethodPatch, "/api/v1/applications/"+appID+"/status", seeker,
		map[string]string{"status": "accepted"}, nil))
	assert.Equal(t, http.StatusOK, s.json(http.MethodPatch, "/api/v1/applications/"+appID+"/status", recruiter,
		map[string]string{"status": "rejected"}, nil))
	assert.Equal(t, http.StatusConflict, s.json(http.MethodPatch, "/api/v1/applications/"+appID+"/status", recruiter,
		map[string]string{"status": "accepted"}, nil))

	var mine struct {
		Applications []model.ApplicationView `json:"applications"`
	}
	require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/applications/mine", seeker, nil, &mine))
	require.Len(t, mine.Applications, 1)
	assert.Equal(t, model.ApplicationStatusRejected, mine.Applications[0].Status)
	assert.Equal(t, "Go Engineer", mine.Applications[0].Job.Title)

	// 下线后不再出现在公开列表
	require.Equal(t, http.StatusOK, s.json(http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", recruiter, nil, nil))
	require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/jobs", "", nil, &listing))
	assert.Equal(t, 0, listing.Count)
}

func TestPhoneVerificationFlow(t *testing.T) {
	s := newTestServer(t)
	seeker := s.register("Sam", "sam@example.com", model.UserRoleSeeker, "")

	require.Equal(t, http.StatusAccepted, s.json(http.MethodPost, "/api/v1/phone/code", seeker,
		map[string]string{"phone": "0812-345-6789"}, nil))
	code := s.sender.LastCode()
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.Equal(t, http.StatusBadRequest, s.json(http.MethodPost, "/api/v1/phone/verify", seeker,
		map[string]string{"code": wrong}, nil))
	assert.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/phone/verify", seeker,
		map[string]string{"code": code}, nil))

	var me model.User
	require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/auth/me", seeker, nil, &me))
	assert.True(t, me.PhoneVerified)
	assert.Equal(t, "628123456789", me.VerifiedPhone)
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t)
	seeker := s.register("Sam", "sam@example.com", model.UserRoleSeeker, "")

	var user model.User
	require.Equal(t, http.StatusOK, s.json(http.MethodPut, "/api/v1/profile", seeker, map[string]any{
		"name":    "Samuel",
		"profile": map[string]string{"bio": "Gopher"},
	}, &user))
	assert.Equal(t, "Samuel", user.Name)
	assert.Equal(t, model.UserRoleSeeker, user.Role)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", "cv.docx")
	require.NoError(t, err)
	_, err = fw.Write([]byte("docx"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req, seeker)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, s.blobs.Len())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/jobs/mine", "/api/v1/applications/mine", "/api/v1/profile"} {
		assert.Equal(t, http.StatusUnauthorized, s.json(http.MethodGet, path, "", nil, nil), path)
	}
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = s.do(req, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH"))
}
