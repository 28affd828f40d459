package waitlist

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись листа ожидания не найдена
	ErrEntryNotFound = errors.New("waitlist entry not found")

	// ErrCannotRespond возвращается, когда ответ на уведомление невозможен
	// (запись не уведомлена или окно ответа истекло)
	ErrCannotRespond = errors.New("waitlist entry cannot be responded to")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
