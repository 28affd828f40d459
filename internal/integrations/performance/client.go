package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// Client клиент для работы с PerformanceService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PerformanceService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetAverageRating получает средний рейтинг мастера за скользящее окно
func (c *Client) GetAverageRating(ctx context.Context, staffID int64) (*StaffRating, error) {
	url := fmt.Sprintf("%s/internal/staff/%d/rating?period_days=%d", c.baseURL, staffID, domain.PerformanceWindowDays)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid staff ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrRatingNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var rating StaffRating
	if err := json.NewDecoder(resp.Body).Decode(&rating); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &rating, nil
}

// GetAverageRatingWithGracefulDegradation получает рейтинг мастера с graceful degradation
// При недоступности PerformanceService возвращает ErrServiceDegraded,
// что позволяет расчету комиссии применить нейтральный множитель 1.0
func (c *Client) GetAverageRatingWithGracefulDegradation(ctx context.Context, staffID int64) (*StaffRating, error) {
	c.log.Info("Fetching average rating for staff_id=%d", staffID)

	rating, err := c.GetAverageRating(ctx, staffID)
	if err != nil {
		// Отсутствие оценок - нормальная бизнес-ситуация (новый мастер),
		// пробрасываем её дальше
		if err == ErrRatingNotFound {
			c.log.Info("No ratings found for staff_id=%d", staffID)
			return nil, err
		}

		// Для всех остальных ошибок (недоступность сервиса, timeout, ошибки парсинга и т.д.)
		// применяем graceful degradation - возвращаем ErrServiceDegraded с контекстом
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("PerformanceService unavailable, applying graceful degradation for staff_id=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: staff_id=%d, error=%v", ErrServiceDegraded, staffID, err)
	}

	c.log.Info("Successfully fetched rating for staff_id=%d, average=%.2f", staffID, rating.AverageRating)
	return rating, nil
}
