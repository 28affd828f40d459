package complete_booking

import "time"

// Request модель запроса на завершение услуги
type Request struct {
	BookingID int64   // ID бронирования
	TipAmount float64 // Чаевые мастеру (опционально, 0 = без чаевых)
}

// Response модель ответа с результатом завершения
type Response struct {
	BookingID          int64     // ID бронирования
	Status             string    // Итоговый статус (completed)
	PaymentStatus      string    // Итоговый статус оплаты
	PaymentSynthesized bool      // Был ли синтезирован платеж наличными
	CompletedAt        time.Time // Время завершения

	// Начисленная комиссия (nil, если мастер не назначен)
	Commission *CommissionResult
}

// CommissionResult результат начисления комиссии
type CommissionResult struct {
	CommissionID      int64   // ID записи комиссии
	StaffID           int64   // ID мастера
	CommissionType    string  // Тип применённой структуры
	CommissionAmount  float64 // База по структуре, до множителя
	QualityMultiplier float64 // Множитель качества
	TotalEarning      float64 // Итоговое начисление
	AlreadyRecorded   bool    // Комиссия уже была начислена ранее (идемпотентность)
}
