package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestParseTeamID(t *testing.T) {
	teamID := uuid.New()
	req := httptest.NewRequest("GET", "/api/teams/"+teamID.String(), nil)
	req.SetPathValue("tid", teamID.String())
	rec := httptest.NewRecorder()

	got, ok := ParseTeamID(rec, req, zap.NewNop())
	if !ok {
		t.Fatalf("expected parse to succeed: %s", rec.Body.String())
	}
	if got != teamID {
		t.Errorf("expected %s, got %s", teamID, got)
	}
}

func TestParseTeamID_Invalid(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/teams/nope", nil)
	req.SetPathValue("tid", "nope")
	rec := httptest.NewRecorder()

	_, ok := ParseTeamID(rec, req, zap.NewNop())
	if ok {
		t.Fatal("expected parse to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errBody["error"] != "invalid_team_id" {
		t.Errorf("expected error code invalid_team_id, got %s", errBody["error"])
	}
}

func TestParseMergeID_Invalid(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/merges/nope/revert", nil)
	req.SetPathValue("mid", "nope")
	rec := httptest.NewRecorder()

	_, ok := ParseMergeID(rec, req, zap.NewNop())
	if ok {
		t.Fatal("expected parse to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errBody["error"] != "invalid_merge_id" {
		t.Errorf("expected error code invalid_merge_id, got %s", errBody["error"])
	}
}

func TestParseLimitQuery(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantLimit int
		wantOK    bool
	}{
		{"missing", "/api/audit/recent", 0, true},
		{"valid", "/api/audit/recent?limit=25", 25, true},
		{"negative passes through", "/api/audit/recent?limit=-5", -5, true},
		{"not a number", "/api/audit/recent?limit=many", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()

			limit, ok := ParseLimitQuery(rec, req, zap.NewNop())
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, limit)
			}
			if !tt.wantOK && rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400 on failure, got %d", rec.Code)
			}
		})
	}
}
