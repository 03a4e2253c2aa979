package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/shared/model"
)

type stubUsers map[string]*model.User

func (s stubUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "boom" {
		return nil, errors.New("db down")
	}
	return s[id], nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

func TestIsPublicRoute(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected bool
	}{
		{"login", "POST", "/api/v1/auth/login", true},
		{"register", "POST", "/api/v1/auth/register", true},
		{"email verify", "POST", "/api/v1/auth/email/verify", true},
		{"health", "GET", "/health", true},
		{"metrics", "GET", "/metrics", true},
		{"list active jobs", "GET", "/api/v1/jobs", true},

		{"email verification request", "POST", "/api/v1/auth/email/verification", false},
		{"me", "GET", "/api/v1/auth/me", false},
		{"create job", "POST", "/api/v1/jobs", false},
		{"my jobs", "GET", "/api/v1/jobs/mine", false},
		{"apply", "POST", "/api/v1/jobs/job-1/applications", false},
		{"lookalike prefix", "GET", "/healthz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicRoute(tt.method, tt.path))
		})
	}
}

func TestMiddlewareResolvesActorFromStore(t *testing.T) {
	cfg := testConfig()
	users := stubUsers{
		"rec-1": {ID: "rec-1", Email: "r@example.com", Name: "R", Role: model.UserRoleRecruiter, Organization: "Acme", PhoneVerified: true},
	}

	var got *Actor
	h := Middleware(cfg, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ActorFrom(r.Context())
	}))

	// token 中的角色被忽略，以存储为准
	token, err := GenerateAccessToken(cfg, "rec-1", "r@example.com", model.UserRoleSeeker)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, model.UserRoleRecruiter, got.Role)
	assert.Equal(t, "Acme", got.Organization)
	assert.True(t, got.PhoneVerified)
}

func TestMiddlewareRejects(t *testing.T) {
	cfg := testConfig()
	users := stubUsers{}
	h := Middleware(cfg, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	refresh, _ := GenerateRefreshToken(cfg, "usr-1")
	ghost, _ := GenerateAccessToken(cfg, "ghost", "", model.UserRoleSeeker)
	broken, _ := GenerateAccessToken(cfg, "boom", "", model.UserRoleSeeker)
	otherCfg := cfg
	otherCfg.JWTSecret = "other"
	forged, _ := GenerateAccessToken(otherCfg, "usr-1", "", model.UserRoleSeeker)
	expiredCfg := cfg
	expiredCfg.AccessTokenTTL = -time.Minute
	expired, _ := GenerateAccessToken(expiredCfg, "usr-1", "", model.UserRoleSeeker)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
		{"forged", "Bearer " + forged, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"store failure", "Bearer " + broken, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("s", "30m", "bogus")
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}
