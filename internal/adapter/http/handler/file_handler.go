package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// FileService manages generated NACHA files.
type FileService interface {
	GetFile(ctx context.Context, id string) (*domain.NACHAFile, error)
	ListFiles(ctx context.Context, limit, offset int) ([]*domain.NACHAFile, error)
	MarkFileTransmitted(ctx context.Context, fileID string) (*domain.NACHAFile, error)
	MarkFileFailed(ctx context.Context, fileID, reason string) (*domain.NACHAFile, error)
}

// Reconciler checks files against the ledger.
type Reconciler interface {
	ReconcileFile(ctx context.Context, fileID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// FileHandler handles NACHA file requests.
type FileHandler struct {
	files      FileService
	reconciler Reconciler
	logger     zerolog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files FileService, reconciler Reconciler, log zerolog.Logger) *FileHandler {
	return &FileHandler{files: files, reconciler: reconciler, logger: log}
}

// List returns files newest first.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListFiles(r.Context(),
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to list files", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FilesFromDomain(files))
}

// Get returns file metadata.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.files.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get file", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FileFromDomain(file))
}

// Content streams the NACHA text as a download.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	file, err := h.files.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get file", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=us-ascii")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

// Transmitted records a successful hand-off to the ODFI.
func (h *FileHandler) Transmitted(w http.ResponseWriter, r *http.Request) {
	file, err := h.files.MarkFileTransmitted(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to mark file transmitted", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FileFromDomain(file))
}

// Failed records a transmission failure, failing every entry of the file.
func (h *FileHandler) Failed(w http.ResponseWriter, r *http.Request) {
	var req dto.FileFailedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	file, err := h.files.MarkFileFailed(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to mark file failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FileFromDomain(file))
}

// Reconcile compares one file with the ledger.
func (h *FileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.ReconcileFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to reconcile file", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Report reconciles every file.
func (h *FileHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to build reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromResult(report))
}
