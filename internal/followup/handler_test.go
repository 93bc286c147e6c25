package followup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianops/salesdesk/internal/http/middleware"
)

func newTestRouter(t *testing.T, repo Repository, now time.Time) http.Handler {
	t.Helper()
	h := NewHandler(newTestService(t, repo, now), nil)
	r := chi.NewRouter()
	r.Get("/followups", h.List)
	r.Get("/followups/{leadID}", h.Get)
	r.Post("/followups/{leadID}/claim", h.Claim)
	r.Post("/followups/{leadID}/follow-up", h.MarkFollowedUp)
	r.Post("/followups/{leadID}/reassign", h.Reassign)
	return r
}

func asStaff(req *http.Request, personID string, admin bool) *http.Request {
	ctx := middleware.WithStaffClaims(req.Context(), middleware.StaffClaims{PersonID: personID, Admin: admin})
	return req.WithContext(ctx)
}

func TestListReturnsPrioritizedItems(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	due := now.Add(-48 * time.Hour)
	repo := &fakeRepo{items: []Item{{
		Lead:     Lead{ID: "lead-1", BookedByPersonID: "p-1", LeadScore: 2},
		FollowUp: FollowUp{LeadID: "lead-1", NextFollowUpAt: &due},
	}}}
	router := newTestRouter(t, repo, now)

	req := httptest.NewRequest(http.MethodGet, "/followups?min_score=1&max_score=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, UrgencyOverdue, resp.Items[0].State.Urgency)
	assert.Equal(t, "p-1", resp.Items[0].OwnerPersonID)
}

func TestClaimUsesJWTIdentity(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	router := newTestRouter(t, repo, now)

	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/claim", nil), "p-7", false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-7", repo.claimedActorID)
}

func TestClaimWithoutIdentityIsUnauthorized(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/followups/lead-1/claim", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimConflictMapsTo409(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{err: ErrConflict}, time.Now())

	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/claim", nil), "p-7", false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMarkFollowedUpAdminGetsOverride(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	router := newTestRouter(t, repo, now)

	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/follow-up", nil), "admin-1", true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.markedOverride)
}

func TestMarkFollowedUpNotOwnerMapsTo403(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{err: ErrNotOwner}, time.Now())

	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/follow-up", nil), "p-9", false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReassignDecodesBody(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo, time.Now())

	body := strings.NewReader(`{"owner_person_id":"p-3"}`)
	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/reassign", body), "admin-1", true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-3", repo.reassignedOwner)
}

func TestReassignEmptyOwnerIs400(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, time.Now())

	body := strings.NewReader(`{"owner_person_id":""}`)
	req := asStaff(httptest.NewRequest(http.MethodPost, "/followups/lead-1/reassign", body), "admin-1", true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNotFoundMapsTo404(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/followups/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
