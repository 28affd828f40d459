package capacity

import "errors"

var (
	// ErrInvalidPeriod возвращается при некорректном периоде расчета
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
