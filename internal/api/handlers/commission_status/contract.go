package commission_status

import "context"

type CommissionsService interface {
	Approve(ctx context.Context, commissionID int64) error
	Reject(ctx context.Context, commissionID int64) error
	MarkPaid(ctx context.Context, commissionID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
