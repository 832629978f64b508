package constants

import "time"

const (
	// ContextKeyAccountID is the gin context key holding the session's account id.
	ContextKeyAccountID = "account_id"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"

	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6

	// DefaultSaveDebounce collapses bursts of task changes into one durable write.
	DefaultSaveDebounce = time.Second

	// DefaultAlertInterval is how often due-date alerts are re-evaluated.
	DefaultAlertInterval = time.Hour

	// DailySummaryTag and OverdueTagPrefix dedupe notifications on the receiving side.
	DailySummaryTag  = "daily-summary"
	OverdueTagPrefix = "overdue-"

	// RequestIDHeader carries the per-request id set by the request logger.
	RequestIDHeader = "X-Request-ID"
)
