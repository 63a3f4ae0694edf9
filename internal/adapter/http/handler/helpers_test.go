package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"file not found", domain.ErrFileNotFound, http.StatusNotFound},
		{"bad routing number", domain.ErrInvalidRoutingNumber, http.StatusBadRequest},
		{"amount too large", domain.ErrAmountTooLarge, http.StatusBadRequest},
		{"not pending", domain.ErrEntryNotPending, http.StatusConflict},
		{"file already transmitted", domain.ErrFileNotGenerated, http.StatusConflict},
		{"claim conflict", domain.ErrConcurrentModification, http.StatusConflict},
		{"assembly gave up", domain.ErrBatchAssemblyFailed, http.StatusConflict},
		{"storage timeout", domain.ErrStorageTimeout, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		leaks  bool
	}{
		{"client error keeps details", domain.ErrInvalidAccountNumber, http.StatusBadRequest, true},
		{"timeout is generic", domain.ErrStorageTimeout, http.StatusServiceUnavailable, false},
		{"internal is generic", errors.New("pq: relation secret_table"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			writeDomainError(rr, req, zerolog.Nop(), "operation failed", tt.err)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if got := strings.Contains(rr.Body.String(), tt.err.Error()); got != tt.leaks {
				t.Fatalf("body %q contains error = %v, want %v", rr.Body.String(), got, tt.leaks)
			}
		})
	}
}
