package commission_status

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	"github.com/lumispa/spa-core/internal/service/commissions"
)

const (
	msgInvalidCommissionID = "некорректный ID записи комиссии"
	msgCommissionNotFound  = "запись комиссии не найдена"
	msgCannotApprove       = "запись комиссии уже прошла утверждение"
	msgCannotMarkPaid      = "запись комиссии не готова к выплате"
)

// StatusResponse ответ на смену статуса записи комиссии
type StatusResponse struct {
	CommissionID int64  `json:"commissionId"`
	Status       string `json:"status"`
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

// HandleApprove PATCH /api/v1/commissions/{commissionId}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "PATCH /commissions/{id}/approve", "approved", h.service.Approve)
}

// HandleReject PATCH /api/v1/commissions/{commissionId}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "PATCH /commissions/{id}/reject", "rejected", h.service.Reject)
}

// HandleMarkPaid PATCH /api/v1/commissions/{commissionId}/mark-paid
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "PATCH /commissions/{id}/mark-paid", "paid", h.service.MarkPaid)
}

// handleTransition общий каркас для переходов статуса записи комиссии
func (h *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	resultStatus string,
	transition func(ctx context.Context, commissionID int64) error,
) {
	vars := mux.Vars(r)

	commissionID, err := strconv.ParseInt(vars["commissionId"], 10, 64)
	if err != nil || commissionID <= 0 {
		h.logger.Warn("%s - Invalid commission ID: %s", op, vars["commissionId"])
		handlers.RespondBadRequest(w, msgInvalidCommissionID)
		return
	}

	if err := transition(r.Context(), commissionID); err != nil {
		switch {
		case errors.Is(err, commissions.ErrCommissionNotFound):
			h.logger.Warn("%s - Commission not found: commission_id=%d", op, commissionID)
			handlers.RespondNotFound(w, msgCommissionNotFound)

		case errors.Is(err, commissions.ErrCannotApprove):
			h.logger.Warn("%s - Cannot change approval: commission_id=%d", op, commissionID)
			handlers.RespondConflict(w, msgCannotApprove)

		case errors.Is(err, commissions.ErrCannotMarkPaid):
			h.logger.Warn("%s - Cannot mark paid: commission_id=%d", op, commissionID)
			handlers.RespondConflict(w, msgCannotMarkPaid)

		default:
			h.logger.Error("%s - Failed: commission_id=%d, error=%v", op, commissionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Commission status changed: commission_id=%d, status=%s", op, commissionID, resultStatus)
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		CommissionID: commissionID,
		Status:       resultStatus,
	})
}
