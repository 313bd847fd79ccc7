package constants

// Session and context keys
const (
	SessionCookieName = "taskdesk_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
	ContextKeyTask    = "task"
	HeaderRequestID   = "X-Request-ID"
)

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	TokenLifetimeDays = 7
)

// Task codes are rendered as "T" followed by a zero-padded sequence number.
const (
	TaskCodePrefix = "T"
	TaskCodeWidth  = 4
)
