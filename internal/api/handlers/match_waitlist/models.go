package match_waitlist

import (
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	matchWaitlist "github.com/lumispa/spa-core/internal/usecase/match_waitlist"
	"github.com/lumispa/spa-core/pkg/types"
)

// MatchRequest HTTP описание освободившегося слота
type MatchRequest struct {
	BranchID  int64  `json:"branchId"`
	ServiceID int64  `json:"serviceId"`
	Date      string `json:"date"`      // "2026-09-05"
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
	StaffID   *int64 `json:"staffId,omitempty"`
}

// MatchedEntryResponse уведомлённая запись листа ожидания
type MatchedEntryResponse struct {
	EntryID       int64  `json:"entryId"`
	ClientID      int64  `json:"clientId"`
	PriorityScore int    `json:"priorityScore"`
	ExpiresAt     string `json:"expiresAt"`
}

// MatchResponse результат подбора
type MatchResponse struct {
	Matched []MatchedEntryResponse `json:"matched"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *MatchRequest) ToUseCaseRequest() (*matchWaitlist.Request, error) {
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

	return &matchWaitlist.Request{
		BranchID:  r.BranchID,
		ServiceID: r.ServiceID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		StaffID:   r.StaffID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *matchWaitlist.Response) *MatchResponse {
	result := &MatchResponse{
		Matched: make([]MatchedEntryResponse, 0, len(resp.Matched)),
	}

	for _, entry := range resp.Matched {
		result.Matched = append(result.Matched, MatchedEntryResponse{
			EntryID:       entry.EntryID,
			ClientID:      entry.ClientID,
			PriorityScore: entry.PriorityScore,
			ExpiresAt:     entry.ExpiresAt.Format(time.RFC3339),
		})
	}

	return result
}
