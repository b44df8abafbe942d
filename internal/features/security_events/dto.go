package security_events

import (
	"time"
)

type GetSecurityEventsRequest struct {
	Limit      int        `form:"limit"      json:"limit"`
	Offset     int        `form:"offset"     json:"offset"`
	Type       string     `form:"type"       json:"type"`
	BeforeDate *time.Time `form:"beforeDate" json:"beforeDate"`
}

type GetSecurityEventsResponse struct {
	Events []*SecurityEvent `json:"events"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
