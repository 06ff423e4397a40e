package util

// gin 上下文键
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "requestId"
	HeaderRequestID     = "X-Request-ID"
)

// 报表周期
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)
