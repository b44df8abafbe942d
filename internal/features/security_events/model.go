package security_events

import (
	"time"

	"github.com/google/uuid"
)

type SecurityEvent struct {
	ID         uuid.UUID         `json:"id"         gorm:"column:id"`
	Type       SecurityEventType `json:"type"       gorm:"column:type"`
	MerchantID *uuid.UUID        `json:"merchantId" gorm:"column:merchant_id"`
	ApiKeyID   *uuid.UUID        `json:"apiKeyId"   gorm:"column:api_key_id"`
	ClientIP   string            `json:"clientIp"   gorm:"column:client_ip"`
	RequestID  string            `json:"requestId"  gorm:"column:request_id"`
	Detail     string            `json:"detail"     gorm:"column:detail"`
	CreatedAt  time.Time         `json:"createdAt"  gorm:"column:created_at"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}
