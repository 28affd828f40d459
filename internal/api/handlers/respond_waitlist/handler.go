package respond_waitlist

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	"github.com/lumispa/spa-core/internal/service/waitlist"
)

const (
	msgInvalidEntryID     = "некорректный ID записи листа ожидания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgEntryNotFound      = "запись листа ожидания не найдена"
	msgCannotRespond      = "ответ на уведомление невозможен: запись не уведомлена или окно ответа истекло"
	msgInvalidExtension   = "некорректное значение продления, ожидается положительное число минут"
)

// RespondRequest ответ клиента на уведомление
type RespondRequest struct {
	Accepted bool `json:"accepted"`
}

// ExtendRequest запрос на продление окна ответа
type ExtendRequest struct {
	ExtensionMinutes int `json:"extensionMinutes"`
}

// StatusResponse ответ на изменение записи листа ожидания
type StatusResponse struct {
	EntryID int64  `json:"entryId"`
	Status  string `json:"status"`
}

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/waitlist/{entryId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.parseEntryID(w, r, "PATCH /waitlist/{id}/respond")
	if !ok {
		return
	}

	var req RespondRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /waitlist/{id}/respond - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.Respond(r.Context(), entryID, req.Accepted); err != nil {
		h.respondServiceError(w, "PATCH /waitlist/{id}/respond", entryID, err)
		return
	}

	status := "declined"
	if req.Accepted {
		status = "converted"
	}

	h.logger.Info("PATCH /waitlist/{id}/respond - Entry resolved: entry_id=%d, status=%s", entryID, status)
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		EntryID: entryID,
		Status:  status,
	})
}

// HandleExtend PATCH /api/v1/waitlist/{entryId}/extend
func (h *Handler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.parseEntryID(w, r, "PATCH /waitlist/{id}/extend")
	if !ok {
		return
	}

	var req ExtendRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /waitlist/{id}/extend - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.ExtensionMinutes <= 0 {
		handlers.RespondBadRequest(w, msgInvalidExtension)
		return
	}

	extension := time.Duration(req.ExtensionMinutes) * time.Minute
	if err := h.service.ExtendExpiry(r.Context(), entryID, extension); err != nil {
		h.respondServiceError(w, "PATCH /waitlist/{id}/extend", entryID, err)
		return
	}

	h.logger.Info("PATCH /waitlist/{id}/extend - Expiry extended: entry_id=%d, minutes=%d",
		entryID, req.ExtensionMinutes)
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		EntryID: entryID,
		Status:  "notified",
	})
}

func (h *Handler) parseEntryID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	vars := mux.Vars(r)

	entryID, err := strconv.ParseInt(vars["entryId"], 10, 64)
	if err != nil || entryID <= 0 {
		h.logger.Warn("%s - Invalid entry ID: %s", op, vars["entryId"])
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return 0, false
	}

	return entryID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, entryID int64, err error) {
	switch {
	case errors.Is(err, waitlist.ErrEntryNotFound):
		h.logger.Warn("%s - Entry not found: entry_id=%d", op, entryID)
		handlers.RespondNotFound(w, msgEntryNotFound)

	case errors.Is(err, waitlist.ErrCannotRespond):
		h.logger.Warn("%s - Cannot respond: entry_id=%d", op, entryID)
		handlers.RespondConflict(w, msgCannotRespond)

	case errors.Is(err, waitlist.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: entry_id=%d, error=%v", op, entryID, err)
		handlers.RespondBadRequest(w, msgInvalidExtension)

	default:
		h.logger.Error("%s - Failed: entry_id=%d, error=%v", op, entryID, err)
		handlers.RespondInternalError(w)
	}
}
