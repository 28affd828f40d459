package complete_booking

import (
	"time"

	completeBooking "github.com/lumispa/spa-core/internal/usecase/complete_booking"
)

// CompleteBookingRequest HTTP request model
type CompleteBookingRequest struct {
	TipAmount float64 `json:"tipAmount,omitempty"`
}

// CompleteBookingResponse HTTP response model
type CompleteBookingResponse struct {
	BookingID          int64               `json:"bookingId"`
	Status             string              `json:"status"`
	PaymentStatus      string              `json:"paymentStatus"`
	PaymentSynthesized bool                `json:"paymentSynthesized"`
	CompletedAt        string              `json:"completedAt"`
	Commission         *CommissionResponse `json:"commission,omitempty"`
}

// CommissionResponse начисленная комиссия мастера
type CommissionResponse struct {
	CommissionID      int64   `json:"commissionId"`
	StaffID           int64   `json:"staffId"`
	CommissionType    string  `json:"commissionType"`
	CommissionAmount  float64 `json:"commissionAmount"`
	QualityMultiplier float64 `json:"qualityMultiplier"`
	TotalEarning      float64 `json:"totalEarning"`
	AlreadyRecorded   bool    `json:"alreadyRecorded"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *completeBooking.Response) *CompleteBookingResponse {
	result := &CompleteBookingResponse{
		BookingID:          resp.BookingID,
		Status:             resp.Status,
		PaymentStatus:      resp.PaymentStatus,
		PaymentSynthesized: resp.PaymentSynthesized,
		CompletedAt:        resp.CompletedAt.Format(time.RFC3339),
	}

	if resp.Commission != nil {
		result.Commission = &CommissionResponse{
			CommissionID:      resp.Commission.CommissionID,
			StaffID:           resp.Commission.StaffID,
			CommissionType:    resp.Commission.CommissionType,
			CommissionAmount:  resp.Commission.CommissionAmount,
			QualityMultiplier: resp.Commission.QualityMultiplier,
			TotalEarning:      resp.Commission.TotalEarning,
			AlreadyRecorded:   resp.Commission.AlreadyRecorded,
		}
	}

	return result
}
