package commission

import "errors"

var (
	// ErrCommissionNotFound возвращается, когда запись комиссии не найдена
	ErrCommissionNotFound = errors.New("commission.repository: commission not found")

	// ErrAlreadyRecorded возвращается, когда комиссия по бронированию уже существует
	// (уникальное ограничение на booking_id)
	ErrAlreadyRecorded = errors.New("commission.repository: commission already recorded for booking")

	// ErrInvalidState возвращается при недопустимом переходе статуса
	// (повторная выплата, утверждение уже решённой записи)
	ErrInvalidState = errors.New("commission.repository: commission is not in a valid state for this operation")

	// ErrStructureNotFound возвращается, когда структура комиссии не настроена
	// ни для мастера, ни для услуги
	ErrStructureNotFound = errors.New("commission.repository: commission structure not found")

	// ErrMalformedStructure возвращается, когда сохранённая структура некорректна
	ErrMalformedStructure = errors.New("commission.repository: malformed commission structure")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("commission.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("commission.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("commission.repository: failed to scan row")
)
