package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
)

const transferBody = `{
	"effective_date": "2024-03-04",
	"amount": "25.00",
	"debit": {"routing_number": "021000021", "account_number": "987654321", "account_type": "checking", "holder_name": "Alice"},
	"credit": {"routing_number": "011000015", "account_number": "123454321", "account_type": "savings", "holder_name": "Bob"}
}`

func TestTransferHandler_Submit_Success(t *testing.T) {
	var captured domain.TransferRequest
	handler := NewTransferHandler(&transferServiceStub{
		submitFn: func(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
			captured = req
			return sampleGroup(), nil
		},
	}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(transferBody))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Debit.AccountNumber != "987654321" || !captured.EffectiveDate.Equal(march4) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "g-1" || resp.Amount != "25.00" || resp.Debit.AccountMask != "****4321" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransferHandler_Submit_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "{bad json"},
		{"unknown field", `{"amount": "1.00", "from_account_id": "a"}`},
		{"bad amount", `{"amount": "ten"}`},
		{"bad date", `{"amount": "1.00", "effective_date": "tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				submitFn: func(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
					t.Fatal("Submit should not be called")
					return nil, nil
				},
			}, zerolog.Nop())

			rec := httptest.NewRecorder()
			handler.Submit(rec, httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransferHandler_Submit_ValidationError(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		submitFn: func(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
			return nil, domain.ErrEffectiveDateNotBusinessDay
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Submit(rec, httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(transferBody)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Get(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.TransactionGroup, error) {
			if id != "g-1" {
				return nil, domain.ErrGroupNotFound
			}
			return sampleGroup(), nil
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/transfers/g-1", nil), "id", "g-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/transfers/nope", nil), "id", "nope"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/transfers/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", rec.Code)
	}
}

func TestTransferHandler_Cancel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"pending transfer", nil, http.StatusOK},
		{"already processed", domain.ErrEntryNotPending, http.StatusConflict},
		{"unknown transfer", domain.ErrGroupNotFound, http.StatusNotFound},
		{"storage down", domain.ErrStorageTimeout, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				cancelFn: func(ctx context.Context, id string) error { return tt.err },
			}, zerolog.Nop())

			rec := httptest.NewRecorder()
			handler.Cancel(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/transfers/g-1/cancel", nil), "id", "g-1"))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
