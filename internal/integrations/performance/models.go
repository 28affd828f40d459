package performance

// StaffRating агрегированная оценка мастера из PerformanceService
type StaffRating struct {
	StaffID       int64   `json:"staff_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	PeriodDays    int     `json:"period_days"`
}

// ErrorResponse модель ошибки от PerformanceService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
