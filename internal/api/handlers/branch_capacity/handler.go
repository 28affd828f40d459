package branch_capacity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	"github.com/lumispa/spa-core/internal/domain"
)

const (
	msgInvalidBranchID = "некорректный ID филиала"
	msgInvalidDate     = "некорректная дата, ожидается параметр date в формате YYYY-MM-DD"
)

type Handler struct {
	service CapacityService
	logger  Logger
}

func NewHandler(service CapacityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/{branchId}/capacity?date=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	branchID, err := strconv.ParseInt(vars["branchId"], 10, 64)
	if err != nil || branchID <= 0 {
		h.logger.Warn("GET /branches/{id}/capacity - Invalid branch ID: %s", vars["branchId"])
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /branches/{id}/capacity - Invalid date: branch_id=%d", branchID)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetBranchCapacity(r.Context(), branchID, date)
	if err != nil {
		h.logger.Error("GET /branches/{id}/capacity - Failed: branch_id=%d, error=%v", branchID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
