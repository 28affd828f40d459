package match_waitlist

import (
	"time"

	"github.com/lumispa/spa-core/pkg/types"
)

// Request описывает освободившийся слот
type Request struct {
	BranchID  int64            // ID филиала
	ServiceID int64            // ID услуги
	Date      time.Time        // Дата слота
	StartTime types.TimeString // Время начала
	EndTime   types.TimeString // Время конца
	StaffID   *int64           // Мастер слота (nil = любой)
}

// MatchedEntry запись листа ожидания, уведомлённая о свободном слоте
type MatchedEntry struct {
	EntryID       int64     // ID записи
	ClientID      int64     // ID клиента для отправки уведомления
	PriorityScore int       // Пересчитанный приоритет
	ExpiresAt     time.Time // Крайний срок ответа
}

// Response результат подбора: уведомлённые записи в порядке убывания приоритета
// Отправка уведомлений клиентам - забота вызывающей стороны
type Response struct {
	Matched []MatchedEntry
}
