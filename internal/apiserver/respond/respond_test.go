package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/shared/apperr"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAppErrorMapping(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)

	w := httptest.NewRecorder()
	AppError(w, r, apperr.NotFound("job not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job not found", decodeBody(t, w).Error)

	w = httptest.NewRecorder()
	AppError(w, r, apperr.Internal(errors.New("pq: connection refused"), "list jobs"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal error", body.Error)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	AppError(w, r, errors.New("raw"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	AppError(w, r, apperr.Upstream(errors.New("dial tcp"), "upload resume"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperr.KindUpstream, decodeBody(t, w).Code)
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, Decode(r, &v))
	assert.Equal(t, "a", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":`))
	assert.True(t, apperr.Is(Decode(r, &v), apperr.KindValidation))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"other":1}`))
	assert.True(t, apperr.Is(Decode(r, &v), apperr.KindValidation))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(``))
	assert.True(t, apperr.Is(Decode(r, &v), apperr.KindValidation))
}
