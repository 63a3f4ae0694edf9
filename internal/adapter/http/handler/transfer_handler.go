package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
)

// TransferService is the part of the ledger the transfer endpoints use.
type TransferService interface {
	Submit(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error)
	GetGroup(ctx context.Context, id string) (*domain.TransactionGroup, error)
	Cancel(ctx context.Context, id string) error
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	ledger TransferService
	logger zerolog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledger TransferService, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{ledger: ledger, logger: log}
}

// Submit records a new transfer as a pending debit/credit pair.
func (h *TransferHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer", err.Error())
		return
	}

	group, err := h.ledger.Submit(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to submit transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(group))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	group, err := h.ledger.GetGroup(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(group))
}

// Cancel cancels both legs of a pending transfer. The id may name the
// transfer or either of its entries.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	if err := h.ledger.Cancel(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, "failed to cancel transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(domain.EntryStatusCancelled),
	})
}
