package refund_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumispa/spa-core/internal/api/handlers"
	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgInvalidBody      = "некорректное тело запроса"
	msgInvalidAmount    = "сумма возврата должна быть положительной"
	msgBookingNotFound  = "бронирование не найдено"
	msgCannotRefund     = "возврат по этому платежу невозможен"
)

// RefundRequest тело запроса на возврат платежа
type RefundRequest struct {
	Amount float64 `json:"amount"`
}

// RefundResponse ответ на возврат платежа
type RefundResponse struct {
	BookingID     int64   `json:"bookingId"`
	PaymentStatus string  `json:"paymentStatus"`
	RefundAmount  float64 `json:"refundAmount"`
}

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/refund
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("PATCH /bookings/{id}/refund - Invalid booking ID: %s", vars["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RefundRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/refund - Invalid body: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	if req.Amount <= 0 {
		h.logger.Warn("PATCH /bookings/{id}/refund - Invalid amount: booking_id=%d, amount=%.2f",
			bookingID, req.Amount)
		handlers.RespondBadRequest(w, msgInvalidAmount)
		return
	}

	if err := h.service.Refund(r.Context(), bookingID, req.Amount); err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/refund - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrCannotRefund):
			h.logger.Warn("PATCH /bookings/{id}/refund - Cannot refund: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCannotRefund)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/refund - Invalid input: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgInvalidAmount)

		default:
			h.logger.Error("PATCH /bookings/{id}/refund - Failed to refund: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/refund - Payment refunded: booking_id=%d, amount=%.2f",
		bookingID, req.Amount)
	handlers.RespondJSON(w, http.StatusOK, RefundResponse{
		BookingID:     bookingID,
		PaymentStatus: string(domain.PaymentRefunded),
		RefundAmount:  req.Amount,
	})
}
