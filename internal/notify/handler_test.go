package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianops/salesdesk/internal/followup"
	"github.com/meridianops/salesdesk/internal/people"
)

func TestRunDigestReturnsSummary(t *testing.T) {
	lister := &fakeLister{items: []followup.DueItem{
		dueItem("lead-1", "p-1", followup.UrgencyOverdue, 2),
	}}
	dir := &fakeDirectory{people: map[string]*people.Person{
		"p-1": {ID: "p-1", Name: "Dana", Email: "dana@example.com"},
	}}
	svc := newDigestService(t, lister, dir, &recordingSender{})
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/reminders/run", nil)
	rec := httptest.NewRecorder()
	h.RunDigest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result DigestResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 1, result.OverdueLeads)
}

func TestRunDigestReportsFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	svc := newDigestService(t, lister, &fakeDirectory{}, &recordingSender{})
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/reminders/run", nil)
	rec := httptest.NewRecorder()
	h.RunDigest(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
