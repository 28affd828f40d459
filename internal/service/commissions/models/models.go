package models

import (
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// Response модели

// CommissionResponse ответ с данными записи комиссии
type CommissionResponse struct {
	ID        int64 `json:"id"`
	StaffID   int64 `json:"staffId"`
	BranchID  int64 `json:"branchId"`
	BookingID int64 `json:"bookingId"`
	ServiceID int64 `json:"serviceId"`

	CommissionType    string  `json:"commissionType"`
	ServiceAmount     float64 `json:"serviceAmount"`
	CommissionAmount  float64 `json:"commissionAmount"`
	QualityMultiplier float64 `json:"qualityMultiplier"`
	TotalEarning      float64 `json:"totalEarning"`

	TipAmount     float64 `json:"tipAmount"`
	BonusAmount   float64 `json:"bonusAmount"`
	PenaltyAmount float64 `json:"penaltyAmount"`
	NetEarning    float64 `json:"netEarning"`

	PayoutStatus   string `json:"payoutStatus"`
	ApprovalStatus string `json:"approvalStatus"`
	EarnedDate     string `json:"earnedDate"` // "2026-08-31"

	ApprovedAt *string `json:"approvedAt,omitempty"` // ISO 8601 format
	PaidAt     *string `json:"paidAt,omitempty"`     // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommissionListResponse ответ со списком записей комиссий
type CommissionListResponse struct {
	Commissions []CommissionResponse `json:"commissions"`
}

// CommissionSummaryResponse агрегат по записям мастера за период
type CommissionSummaryResponse struct {
	StaffID       int64   `json:"staffId"`
	PeriodStart   string  `json:"periodStart"` // "2026-08-01"
	PeriodEnd     string  `json:"periodEnd"`   // "2026-08-31"
	RecordCount   int     `json:"recordCount"`
	TotalEarning  float64 `json:"totalEarning"`
	TipTotal      float64 `json:"tipTotal"`
	BonusTotal    float64 `json:"bonusTotal"`
	PenaltyTotal  float64 `json:"penaltyTotal"`
	PendingAmount float64 `json:"pendingAmount"`
	PaidAmount    float64 `json:"paidAmount"`
}

// StaffEarningsResponse одна строка отчета по лучшим мастерам филиала
type StaffEarningsResponse struct {
	StaffID      int64   `json:"staffId"`
	TotalEarning float64 `json:"totalEarning"`
	BookingCount int     `json:"bookingCount"`
}

// TopEarnersResponse отчет по лучшим мастерам филиала за период
type TopEarnersResponse struct {
	BranchID int64                   `json:"branchId"`
	Staff    []StaffEarningsResponse `json:"staff"`
}

// Методы конвертации

// FromDomainCommission конвертирует domain модель в DTO
func FromDomainCommission(c *domain.StaffCommission) *CommissionResponse {
	if c == nil {
		return nil
	}

	resp := &CommissionResponse{
		ID:                c.ID,
		StaffID:           c.StaffID,
		BranchID:          c.BranchID,
		BookingID:         c.BookingID,
		ServiceID:         c.ServiceID,
		CommissionType:    string(c.CommissionType),
		ServiceAmount:     c.ServiceAmount,
		CommissionAmount:  c.CommissionAmount,
		QualityMultiplier: c.QualityMultiplier,
		TotalEarning:      c.TotalEarning,
		TipAmount:         c.TipAmount,
		BonusAmount:       c.BonusAmount,
		PenaltyAmount:     c.PenaltyAmount,
		NetEarning:        c.NetEarning(),
		PayoutStatus:      string(c.PayoutStatus),
		ApprovalStatus:    string(c.ApprovalStatus),
		EarnedDate:        c.EarnedDate.Format(domain.DateFormat),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}

	if c.ApprovedAt != nil {
		s := c.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if c.PaidAt != nil {
		s := c.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}

	return resp
}

// FromDomainCommissionList конвертирует список domain моделей в DTO
func FromDomainCommissionList(commissions []*domain.StaffCommission) *CommissionListResponse {
	resp := &CommissionListResponse{
		Commissions: make([]CommissionResponse, 0, len(commissions)),
	}

	for _, c := range commissions {
		if cr := FromDomainCommission(c); cr != nil {
			resp.Commissions = append(resp.Commissions, *cr)
		}
	}

	return resp
}

// FromDomainSummary конвертирует агрегат в DTO
func FromDomainSummary(s *domain.CommissionSummary, from, to time.Time) *CommissionSummaryResponse {
	if s == nil {
		return nil
	}

	return &CommissionSummaryResponse{
		StaffID:       s.StaffID,
		PeriodStart:   from.Format(domain.DateFormat),
		PeriodEnd:     to.Format(domain.DateFormat),
		RecordCount:   s.RecordCount,
		TotalEarning:  s.TotalEarning,
		TipTotal:      s.TipTotal,
		BonusTotal:    s.BonusTotal,
		PenaltyTotal:  s.PenaltyTotal,
		PendingAmount: s.PendingAmount,
		PaidAmount:    s.PaidAmount,
	}
}

// FromDomainTopEarners конвертирует отчет по лучшим мастерам в DTO
func FromDomainTopEarners(branchID int64, earnings []*domain.StaffEarnings) *TopEarnersResponse {
	resp := &TopEarnersResponse{
		BranchID: branchID,
		Staff:    make([]StaffEarningsResponse, 0, len(earnings)),
	}

	for _, e := range earnings {
		resp.Staff = append(resp.Staff, StaffEarningsResponse{
			StaffID:      e.StaffID,
			TotalEarning: e.TotalEarning,
			BookingCount: e.BookingCount,
		})
	}

	return resp
}
