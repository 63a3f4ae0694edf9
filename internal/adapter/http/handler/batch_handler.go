package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// Assembler runs batch assembly.
type Assembler interface {
	Assemble(ctx context.Context, targetDate time.Time) (*domain.AssemblyResult, error)
}

// BatchHandler triggers batch runs on demand.
type BatchHandler struct {
	assembler Assembler
	clock     usecase.Clock
	logger    zerolog.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(assembler Assembler, clock usecase.Clock, log zerolog.Logger) *BatchHandler {
	if clock == nil {
		clock = usecase.SystemClock{}
	}
	return &BatchHandler{assembler: assembler, clock: clock, logger: log}
}

// Assemble claims every pending entry due through target_date, which
// defaults to today.
func (h *BatchHandler) Assemble(w http.ResponseWriter, r *http.Request) {
	var req dto.AssembleBatchRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	target := domain.DateOf(h.clock.Now())
	if req.TargetDate != "" {
		d, err := domain.ParseDate(req.TargetDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid target_date", err.Error())
			return
		}
		target = d
	}

	result, err := h.assembler.Assemble(r.Context(), target)
	if err != nil {
		writeDomainError(w, r, h.logger, "batch assembly failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssemblyFromDomain(result))
}
