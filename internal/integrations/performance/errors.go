package performance

import "errors"

var (
	// ErrRatingNotFound возвращается, когда у мастера нет оценок за период
	ErrRatingNotFound = errors.New("staff member has no ratings for period")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("performance client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("performance client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что PerformanceService недоступен и следует использовать нейтральный множитель
	ErrServiceDegraded = errors.New("performance service unavailable: graceful degradation applied")
)
