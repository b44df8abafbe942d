package api_keys

import (
	"time"

	"github.com/google/uuid"
)

type CreateApiKeyRequestDTO struct {
	Name          string   `json:"name"          binding:"required,min=1,max=100"`
	Environment   string   `json:"environment"   binding:"required"`
	Permissions   []string `json:"permissions"`
	ExpiresInDays *int     `json:"expiresInDays" binding:"omitempty,gt=0"`
}

type RotateApiKeyRequestDTO struct {
	GraceDays int `json:"graceDays" binding:"omitempty,gte=0"`
}

type GetApiKeysResponseDTO struct {
	ApiKeys []*ApiKey `json:"apiKeys"`
}

type ValidateKeyRequestDTO struct {
	Key string `json:"key" binding:"required"`
}

// KeyValidation is the outcome of a credential check. When Valid is false
// the identity fields are zero and must not be used.
type KeyValidation struct {
	Valid       bool      `json:"valid"`
	MerchantID  uuid.UUID `json:"merchantId,omitempty"`
	KeyID       uuid.UUID `json:"keyId,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
}

type KeyUsageResponseDTO struct {
	TotalRequests      int64            `json:"totalRequests"`
	RequestsByEndpoint map[string]int64 `json:"requestsByEndpoint"`
	RequestsByStatus   map[string]int64 `json:"requestsByStatus"`
	AvgResponseTimeMs  float64          `json:"avgResponseTimeMs"`
	LastUsed           *time.Time       `json:"lastUsed"`
}

type ProcessExpiredKeysResponseDTO struct {
	ExpiredCount int64 `json:"expiredCount"`
}
