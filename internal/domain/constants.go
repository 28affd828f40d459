package domain

// Booking policy constants
const (
	// CancellationNoticeHours минимальное количество часов до визита,
	// при котором клиент ещё может отменить бронирование
	CancellationNoticeHours = 24

	// MaxCancellationReasonLength максимальная длина причины отмены
	MaxCancellationReasonLength = 500

	// MaxNotesLength максимальная длина заметок
	MaxNotesLength = 500
)

// Commission defaults
const (
	// DefaultCommissionRate процент, применяемый когда для мастера и услуги
	// не настроена ни одна структура комиссии
	DefaultCommissionRate = 25.0

	// PerformanceWindowDays окно расчета среднего рейтинга мастера
	PerformanceWindowDays = 30
)

// Capacity constants
const (
	// CapacitySlotMinutes размер слота при расчете загрузки филиала
	CapacitySlotMinutes = 30
)

// Waitlist constants
const (
	// WaitlistNotifyExpiryMinutes время жизни уведомления листа ожидания
	WaitlistNotifyExpiryMinutes = 120

	// WaitlistMaxWaitHoursBonus максимальный бонус за время ожидания
	WaitlistMaxWaitHoursBonus = 48

	// WaitlistMaxLoyaltyBonus максимальный бонус за историю бронирований клиента
	WaitlistMaxLoyaltyBonus = 30

	// WaitlistLoyaltyPointsPerBooking баллы за каждое прошлое бронирование
	WaitlistLoyaltyPointsPerBooking = 5

	// WaitlistFlexibilityBonus бонус за гибкость по мастерам/датам
	WaitlistFlexibilityBonus = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveBookingStatuses статусы, при которых бронирование занимает слот
var ActiveBookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// BookedStatuses статусы, учитываемые как занятые минуты при расчете загрузки
var BookedStatuses = []BookingStatus{
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}

// TerminalBookingStatuses конечные статусы бронирования
var TerminalBookingStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
