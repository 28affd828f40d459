package complete_booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	completeBooking "github.com/lumispa/spa-core/internal/usecase/complete_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
	msgNotInProgress      = "завершить можно только услугу в процессе оказания"
	msgPaymentNotValid    = "платеж бронирования в неуспешном статусе"
)

type Handler struct {
	useCase CompleteBookingUseCase
	logger  Logger
}

func NewHandler(useCase CompleteBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("PATCH /bookings/{id}/complete - Invalid booking ID: %s", vars["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело опционально: чаевые передаются только при наличии
	var req CompleteBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /bookings/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &completeBooking.Request{
		BookingID: bookingID,
		TipAmount: req.TipAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, completeBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/complete - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, completeBooking.ErrNotInProgress):
			h.logger.Warn("PATCH /bookings/{id}/complete - Not in progress: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotInProgress)

		case errors.Is(err, completeBooking.ErrPaymentNotValid):
			h.logger.Warn("PATCH /bookings/{id}/complete - Payment not valid: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgPaymentNotValid)

		case errors.Is(err, completeBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/complete - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PATCH /bookings/{id}/complete - Failed to complete: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/complete - Booking completed: booking_id=%d, payment_synthesized=%t",
		result.BookingID, result.PaymentSynthesized)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
