package commissions

import "errors"

var (
	// ErrCommissionNotFound возвращается, когда запись комиссии не найдена
	ErrCommissionNotFound = errors.New("commission not found")

	// ErrCannotApprove возвращается, когда запись уже прошла утверждение
	ErrCannotApprove = errors.New("commission cannot be approved")

	// ErrCannotMarkPaid возвращается, когда запись не готова к выплате
	// (не утверждена или уже выплачена)
	ErrCannotMarkPaid = errors.New("commission cannot be marked as paid")

	// ErrInvalidPeriod возвращается при некорректном периоде выборки
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
