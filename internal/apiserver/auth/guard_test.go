package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/model"
)

func TestAuthorize(t *testing.T) {
	seeker := &Actor{ID: "usr-1", Role: model.UserRoleSeeker}
	recruiter := &Actor{ID: "rec-1", Role: model.UserRoleRecruiter, Organization: "Acme"}

	tests := []struct {
		name  string
		actor *Actor
		reqs  []Requirement
		want  apperr.Kind
	}{
		{"anonymous", nil, nil, apperr.KindUnauthenticated},
		{"anonymous with role", nil, []Requirement{RequireRole(model.UserRoleSeeker)}, apperr.KindUnauthenticated},
		{"empty id", &Actor{}, nil, apperr.KindUnauthenticated},
		{"authenticated", seeker, nil, ""},
		{"role ok", recruiter, []Requirement{RequireRole(model.UserRoleRecruiter)}, ""},
		{"role mismatch", seeker, []Requirement{RequireRole(model.UserRoleRecruiter)}, apperr.KindForbidden},
		{"owner ok", recruiter, []Requirement{RequireRole(model.UserRoleRecruiter), RequireOwner("rec-1")}, ""},
		{"owner mismatch", recruiter, []Requirement{RequireOwner("rec-2")}, apperr.KindForbidden},
		{"empty owner", recruiter, []Requirement{RequireOwner("")}, apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Authorize(tt.actor, tt.reqs...)
			if tt.want == "" {
				require.NoError(t, err)
				assert.Same(t, tt.actor, got)
				return
			}
			assert.Nil(t, got)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestConceal(t *testing.T) {
	_, err := Authorize(&Actor{ID: "rec-2", Role: model.UserRoleRecruiter}, RequireOwner("rec-1"))
	concealed := Conceal(err, "job not found")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(concealed))
	assert.Equal(t, "job not found", apperr.PublicMessage(concealed))

	unauth := apperr.Unauthenticated("authentication required")
	assert.Equal(t, unauth, Conceal(unauth, "job not found"))
	assert.Nil(t, Conceal(nil, "x"))
}
