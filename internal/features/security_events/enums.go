package security_events

type SecurityEventType string

const (
	EventAuthSuccess       SecurityEventType = "AUTH_SUCCESS"
	EventAuthFailure       SecurityEventType = "AUTH_FAILURE"
	EventAccessDenied      SecurityEventType = "ACCESS_DENIED"
	EventRateLimitExceeded SecurityEventType = "RATE_LIMIT_EXCEEDED"
)
