package top_earners

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
	msgInvalidBranchID = "некорректный ID филиала"
	msgInvalidPeriod   = "некорректный период, ожидаются параметры from и to в формате YYYY-MM-DD"
	msgInvalidLimit    = "некорректное значение limit"
)

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

// Handle GET /api/v1/branches/{branchId}/commissions/top-earners?from=...&to=...&limit=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	branchID, err := strconv.ParseInt(vars["branchId"], 10, 64)
	if err != nil || branchID <= 0 {
		h.logger.Warn("GET /branches/{id}/commissions/top-earners - Invalid branch ID: %s", vars["branchId"])
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	query := r.URL.Query()

	from, err := time.Parse(domain.DateFormat, query.Get("from"))
	if err != nil {
		h.logger.Warn("GET /branches/{id}/commissions/top-earners - Invalid from date: branch_id=%d", branchID)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	to, err := time.Parse(domain.DateFormat, query.Get("to"))
	if err != nil {
		h.logger.Warn("GET /branches/{id}/commissions/top-earners - Invalid to date: branch_id=%d", branchID)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	// limit опционален, при отсутствии сервис применяет значение по умолчанию
	var limit uint64
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.logger.Warn("GET /branches/{id}/commissions/top-earners - Invalid limit: branch_id=%d", branchID)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
	}

	result, err := h.service.GetTopEarners(r.Context(), branchID, from, to, limit)
	if err != nil {
		switch {
		case errors.Is(err, commissions.ErrInvalidPeriod):
			h.logger.Warn("GET /branches/{id}/commissions/top-earners - Invalid period: branch_id=%d", branchID)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /branches/{id}/commissions/top-earners - Failed: branch_id=%d, error=%v",
				branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
