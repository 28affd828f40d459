package refund_payment

import "context"

type BookingsService interface {
	Refund(ctx context.Context, bookingID int64, amount float64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
