package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
)

// EntryService reads ledger entries.
type EntryService interface {
	GetEntry(ctx context.Context, id string) (*domain.TransactionEntry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	ledger EntryService
	logger zerolog.Logger
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledger EntryService, log zerolog.Logger) *EntryHandler {
	return &EntryHandler{ledger: ledger, logger: log}
}

// List returns entries filtered by status, effective date upper bound,
// transfer or file.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EntryFilter{
		GroupID: q.Get("transfer_id"),
		FileID:  q.Get("file_id"),
		Limit:   parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:  parseIntQuery(r, "offset", 0),
	}

	if s := q.Get("status"); s != "" {
		status, err := domain.ParseEntryStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid status", err.Error())
			return
		}
		filter.Status = &status
	}

	if s := q.Get("effective_date_to"); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid effective_date_to", err.Error())
			return
		}
		filter.EffectiveBefore = &d
	}

	entries, err := h.ledger.ListEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ledger.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
