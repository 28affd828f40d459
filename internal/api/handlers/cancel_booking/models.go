package cancel_booking

import (
	"time"

	cancelBooking "github.com/lumispa/spa-core/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID        int64  `json:"bookingId"`
	Status           string `json:"status"`
	PaymentFailed    bool   `json:"paymentFailed"`
	CancelledAt      string `json:"cancelledAt"`
	WaitlistNotified int    `json:"waitlistNotified"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:        resp.BookingID,
		Status:           resp.Status,
		PaymentFailed:    resp.PaymentFailed,
		CancelledAt:      resp.CancelledAt.Format(time.RFC3339),
		WaitlistNotified: resp.WaitlistNotified,
	}
}
