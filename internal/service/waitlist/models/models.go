package models

import (
	"errors"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/types"
)

var (
	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date format")

	// ErrInvalidTime возвращается при некорректном времени
	ErrInvalidTime = errors.New("invalid time format")

	// ErrInvalidPriorityLevel возвращается при некорректном уровне приоритета
	ErrInvalidPriorityLevel = errors.New("invalid priority level")
)

// Request модели

// CreateWaitlistRequest запрос на постановку в лист ожидания
type CreateWaitlistRequest struct {
	BranchID  int64 `json:"branchId"`
	ClientID  int64 `json:"clientId"`
	ServiceID int64 `json:"serviceId"`

	PreferredStaffID *int64  `json:"preferredStaffId,omitempty"`
	PreferredDate    string  `json:"preferredDate"`            // "2026-09-05"
	PreferredStart   *string `json:"preferredStart,omitempty"` // "10:00"
	PreferredEnd     *string `json:"preferredEnd,omitempty"`   // "12:00"

	AlternativeDates    []string `json:"alternativeDates,omitempty"` // "2026-09-06"
	AlternativeStaffIDs []int64  `json:"alternativeStaffIds,omitempty"`

	PriorityLevel string `json:"priorityLevel"` // low / medium / high / vip
}

// ToDomainEntry конвертирует request в domain модель с валидацией
func (r *CreateWaitlistRequest) ToDomainEntry() (*domain.WaitlistEntry, error) {
	preferredDate, err := time.Parse(domain.DateFormat, r.PreferredDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	level, err := toDomainPriorityLevel(r.PriorityLevel)
	if err != nil {
		return nil, err
	}

	entry := &domain.WaitlistEntry{
		BranchID:            r.BranchID,
		ClientID:            r.ClientID,
		ServiceID:           r.ServiceID,
		PreferredStaffID:    r.PreferredStaffID,
		PreferredDate:       preferredDate,
		AlternativeStaffIDs: r.AlternativeStaffIDs,
		Status:              domain.WaitlistPending,
		PriorityLevel:       level,
	}

	if r.PreferredStart != nil {
		start, err := types.NewTimeStringFromString(*r.PreferredStart)
		if err != nil {
			return nil, ErrInvalidTime
		}
		entry.PreferredStart = &start
	}
	if r.PreferredEnd != nil {
		end, err := types.NewTimeStringFromString(*r.PreferredEnd)
		if err != nil {
			return nil, ErrInvalidTime
		}
		entry.PreferredEnd = &end
	}

	for _, raw := range r.AlternativeDates {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, ErrInvalidDate
		}
		entry.AlternativeDates = append(entry.AlternativeDates, date)
	}

	return entry, nil
}

// Response модели

// WaitlistEntryResponse ответ с данными записи листа ожидания
type WaitlistEntryResponse struct {
	ID        int64 `json:"id"`
	BranchID  int64 `json:"branchId"`
	ClientID  int64 `json:"clientId"`
	ServiceID int64 `json:"serviceId"`

	PreferredStaffID *int64  `json:"preferredStaffId,omitempty"`
	PreferredDate    string  `json:"preferredDate"`
	PreferredStart   *string `json:"preferredStart,omitempty"`
	PreferredEnd     *string `json:"preferredEnd,omitempty"`

	AlternativeDates    []string `json:"alternativeDates,omitempty"`
	AlternativeStaffIDs []int64  `json:"alternativeStaffIds,omitempty"`

	Status        string `json:"status"`
	PriorityLevel string `json:"priorityLevel"`
	PriorityScore int    `json:"priorityScore"`

	ExpiresAt *string `json:"expiresAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WaitlistListResponse ответ со списком записей листа ожидания
type WaitlistListResponse struct {
	Entries []WaitlistEntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainEntry конвертирует domain модель в DTO
func FromDomainEntry(e *domain.WaitlistEntry) *WaitlistEntryResponse {
	if e == nil {
		return nil
	}

	resp := &WaitlistEntryResponse{
		ID:                  e.ID,
		BranchID:            e.BranchID,
		ClientID:            e.ClientID,
		ServiceID:           e.ServiceID,
		PreferredStaffID:    e.PreferredStaffID,
		PreferredDate:       e.PreferredDate.Format(domain.DateFormat),
		AlternativeStaffIDs: e.AlternativeStaffIDs,
		Status:              string(e.Status),
		PriorityLevel:       string(e.PriorityLevel),
		PriorityScore:       e.PriorityScore,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	if e.PreferredStart != nil {
		s := e.PreferredStart.String()
		resp.PreferredStart = &s
	}
	if e.PreferredEnd != nil {
		s := e.PreferredEnd.String()
		resp.PreferredEnd = &s
	}
	for _, date := range e.AlternativeDates {
		resp.AlternativeDates = append(resp.AlternativeDates, date.Format(domain.DateFormat))
	}
	if e.ExpiresAt != nil {
		s := e.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &s
	}

	return resp
}

// FromDomainEntryList конвертирует список domain моделей в DTO
func FromDomainEntryList(entries []*domain.WaitlistEntry) *WaitlistListResponse {
	resp := &WaitlistListResponse{
		Entries: make([]WaitlistEntryResponse, 0, len(entries)),
	}

	for _, e := range entries {
		if er := FromDomainEntry(e); er != nil {
			resp.Entries = append(resp.Entries, *er)
		}
	}

	return resp
}

func toDomainPriorityLevel(level string) (domain.PriorityLevel, error) {
	l := domain.PriorityLevel(level)

	validLevels := []domain.PriorityLevel{
		domain.PriorityLow,
		domain.PriorityMedium,
		domain.PriorityHigh,
		domain.PriorityVIP,
	}

	for _, valid := range validLevels {
		if l == valid {
			return l, nil
		}
	}

	return "", ErrInvalidPriorityLevel
}
