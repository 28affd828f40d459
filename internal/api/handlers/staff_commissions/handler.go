package staff_commissions

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/internal/service/commissions"
)

const (
	msgInvalidStaffID = "некорректный ID мастера"
	msgInvalidPeriod  = "некорректный период, ожидаются параметры from и to в формате YYYY-MM-DD"
)

// EarningsResponse сумма заработка мастера за период
type EarningsResponse struct {
	StaffID       int64   `json:"staffId"`
	PeriodStart   string  `json:"periodStart"`
	PeriodEnd     string  `json:"periodEnd"`
	TotalEarnings float64 `json:"totalEarnings"`
}

type Handler struct {
	service CommissionsService
	logger  Logger
}

func NewHandler(service CommissionsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleList GET /api/v1/staff/{staffId}/commissions?from=...&to=...
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	staffID, from, to, ok := h.parseStaffPeriod(w, r, "GET /staff/{id}/commissions")
	if !ok {
		return
	}

	result, err := h.service.GetStaffCommissions(r.Context(), staffID, from, to)
	if err != nil {
		h.respondServiceError(w, "GET /staff/{id}/commissions", staffID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandlePending GET /api/v1/staff/{staffId}/commissions/pending
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.parseStaffID(w, r, "GET /staff/{id}/commissions/pending")
	if !ok {
		return
	}

	result, err := h.service.GetPendingCommissions(r.Context(), staffID)
	if err != nil {
		h.respondServiceError(w, "GET /staff/{id}/commissions/pending", staffID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleSummary GET /api/v1/staff/{staffId}/commissions/summary?from=...&to=...
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	staffID, from, to, ok := h.parseStaffPeriod(w, r, "GET /staff/{id}/commissions/summary")
	if !ok {
		return
	}

	result, err := h.service.GetCommissionSummary(r.Context(), staffID, from, to)
	if err != nil {
		h.respondServiceError(w, "GET /staff/{id}/commissions/summary", staffID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleEarnings GET /api/v1/staff/{staffId}/earnings?from=...&to=...
func (h *Handler) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	staffID, from, to, ok := h.parseStaffPeriod(w, r, "GET /staff/{id}/earnings")
	if !ok {
		return
	}

	total, err := h.service.GetTotalEarnings(r.Context(), staffID, from, to)
	if err != nil {
		h.respondServiceError(w, "GET /staff/{id}/earnings", staffID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, EarningsResponse{
		StaffID:       staffID,
		PeriodStart:   from.Format(domain.DateFormat),
		PeriodEnd:     to.Format(domain.DateFormat),
		TotalEarnings: total,
	})
}

func (h *Handler) parseStaffID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	vars := mux.Vars(r)

	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil || staffID <= 0 {
		h.logger.Warn("%s - Invalid staff ID: %s", op, vars["staffId"])
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return 0, false
	}

	return staffID, true
}

func (h *Handler) parseStaffPeriod(w http.ResponseWriter, r *http.Request, op string) (int64, time.Time, time.Time, bool) {
	staffID, ok := h.parseStaffID(w, r, op)
	if !ok {
		return 0, time.Time{}, time.Time{}, false
	}

	from, to, err := parsePeriod(r)
	if err != nil {
		h.logger.Warn("%s - Invalid period: staff_id=%d, error=%v", op, staffID, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return 0, time.Time{}, time.Time{}, false
	}

	return staffID, from, to, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, staffID int64, err error) {
	switch {
	case errors.Is(err, commissions.ErrInvalidPeriod):
		h.logger.Warn("%s - Invalid period: staff_id=%d", op, staffID)
		handlers.RespondBadRequest(w, msgInvalidPeriod)

	default:
		h.logger.Error("%s - Failed: staff_id=%d, error=%v", op, staffID, err)
		handlers.RespondInternalError(w)
	}
}

// parsePeriod читает обязательные параметры from и to
func parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	from, err := time.Parse(domain.DateFormat, query.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to, err := time.Parse(domain.DateFormat, query.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return from, to, nil
}
