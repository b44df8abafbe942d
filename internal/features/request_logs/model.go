package request_logs

import (
	"time"

	"github.com/google/uuid"
)

type RequestLog struct {
	ID             uuid.UUID `json:"id"             gorm:"column:id"`
	ApiKeyID       uuid.UUID `json:"apiKeyId"       gorm:"column:api_key_id"`
	MerchantID     uuid.UUID `json:"merchantId"     gorm:"column:merchant_id"`
	RequestID      string    `json:"requestId"      gorm:"column:request_id"`
	Endpoint       string    `json:"endpoint"       gorm:"column:endpoint"`
	Method         string    `json:"method"         gorm:"column:method"`
	StatusCode     int       `json:"statusCode"     gorm:"column:status_code"`
	ResponseTimeMs int       `json:"responseTimeMs" gorm:"column:response_time_ms"`
	ClientIP       string    `json:"clientIp"       gorm:"column:client_ip"`
	CreatedAt      time.Time `json:"createdAt"      gorm:"column:created_at"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}
