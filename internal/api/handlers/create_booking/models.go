package create_booking

import (
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	createBooking "github.com/lumispa/spa-core/internal/usecase/create_booking"
	"github.com/lumispa/spa-core/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BranchID      int64   `json:"branchId"`
	ServiceID     int64   `json:"serviceId"`
	ClientID      int64   `json:"clientId"`
	StaffID       *int64  `json:"staffId,omitempty"`
	Date          string  `json:"date"`      // "2026-09-05"
	StartTime     string  `json:"startTime"` // "10:00"
	EndTime       string  `json:"endTime"`   // "11:00"
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            int64   `json:"id"`
	Reference     string  `json:"reference"`
	BranchID      int64   `json:"branchId"`
	ServiceID     int64   `json:"serviceId"`
	ClientID      int64   `json:"clientId"`
	StaffID       *int64  `json:"staffId,omitempty"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentID     *int64  `json:"paymentId,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	req := &createBooking.Request{
		BranchID:    r.BranchID,
		ServiceID:   r.ServiceID,
		ClientID:    r.ClientID,
		StaffID:     r.StaffID,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		TotalAmount: r.TotalAmount,
		Notes:       r.Notes,
	}

	if r.PaymentMethod != nil {
		method := domain.PaymentMethod(*r.PaymentMethod)
		req.PaymentMethod = &method
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:            resp.ID,
		Reference:     resp.Reference,
		BranchID:      resp.BranchID,
		ServiceID:     resp.ServiceID,
		ClientID:      resp.ClientID,
		StaffID:       resp.StaffID,
		Date:          resp.AppointmentDate.Format(domain.DateFormat),
		StartTime:     resp.StartTime.String(),
		EndTime:       resp.EndTime.String(),
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		TotalAmount:   resp.TotalAmount,
		PaymentID:     resp.PaymentID,
		Notes:         resp.Notes,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     resp.UpdatedAt.Format(time.RFC3339),
	}
}
