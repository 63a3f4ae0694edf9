package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
)

// CalendarService answers business-day questions.
type CalendarService interface {
	Info(ctx context.Context, date time.Time) (domain.BusinessDayInfo, error)
	AddBusinessDays(ctx context.Context, date time.Time, n int) (time.Time, error)
	BusinessDaysBetween(ctx context.Context, start, end time.Time) (int, error)
}

// CalendarHandler handles business-day calendar requests.
type CalendarHandler struct {
	calendar CalendarService
	logger   zerolog.Logger
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendar CalendarService, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: log}
}

// Info describes a single date.
func (h *CalendarHandler) Info(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	info, err := h.calendar.Info(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to read calendar", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BusinessDayFromDomain(info))
}

// AddDays adds n business days to a date.
func (h *CalendarHandler) AddDays(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day count", err.Error())
		return
	}

	result, err := h.calendar.AddBusinessDays(r.Context(), date, n)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to add business days", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AddBusinessDaysResponse{
		Date:   domain.FormatDate(date),
		Days:   n,
		Result: domain.FormatDate(result),
	})
}

// Between counts business days in [start, end).
func (h *CalendarHandler) Between(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := domain.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	end, err := domain.ParseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end", err.Error())
		return
	}

	count, err := h.calendar.BusinessDaysBetween(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to count business days", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BusinessDaysBetweenResponse{
		Start: domain.FormatDate(start),
		End:   domain.FormatDate(end),
		Count: count,
	})
}
