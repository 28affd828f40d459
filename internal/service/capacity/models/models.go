package models

// StaffUtilizationResponse загрузка мастера за период
type StaffUtilizationResponse struct {
	StaffID            int64   `json:"staffId"`
	PeriodStart        string  `json:"periodStart"` // "2026-08-01"
	PeriodEnd          string  `json:"periodEnd"`   // "2026-08-31"
	AvailableMinutes   int     `json:"availableMinutes"`
	BookedMinutes      int     `json:"bookedMinutes"`
	UtilizationPercent float64 `json:"utilizationPercent"`
}

// StaffSlotCapacity свободная ёмкость одного мастера на дату
type StaffSlotCapacity struct {
	StaffID          int64 `json:"staffId"`
	AvailableMinutes int   `json:"availableMinutes"`
	BookedMinutes    int   `json:"bookedMinutes"`
	FreeSlots        int   `json:"freeSlots"` // 30-минутные слоты
}

// BranchCapacityResponse ёмкость филиала на дату
// TotalCapacitySlots и BookedCapacitySlots считаются от суммарных минут филиала,
// TotalFreeSlots - сумма свободных слотов по мастерам (округление по каждому)
type BranchCapacityResponse struct {
	BranchID            int64               `json:"branchId"`
	Date                string              `json:"date"` // "2026-08-31"
	TotalCapacitySlots  int                 `json:"totalCapacitySlots"`
	BookedCapacitySlots int                 `json:"bookedCapacitySlots"`
	TotalFreeSlots      int                 `json:"totalFreeSlots"`
	Staff               []StaffSlotCapacity `json:"staff"`
}
