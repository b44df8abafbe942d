package api_keys

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID          uuid.UUID      `json:"id"          gorm:"column:id"`
	MerchantID  uuid.UUID      `json:"merchantId"  gorm:"column:merchant_id"`
	Name        string         `json:"name"        gorm:"column:name"`
	KeyPrefix   string         `json:"keyPrefix"   gorm:"column:key_prefix"`
	KeyHash     string         `json:"-"           gorm:"column:key_hash"` // Never expose in JSON
	Environment KeyEnvironment `json:"environment" gorm:"column:environment"`
	Permissions PermissionList `json:"permissions" gorm:"column:permissions"`
	Status      ApiKeyStatus   `json:"status"      gorm:"column:status"`
	ExpiresAt   *time.Time     `json:"expiresAt"   gorm:"column:expires_at"`
	LastUsedAt  *time.Time     `json:"lastUsedAt"  gorm:"column:last_used_at"`
	CreatedAt   time.Time      `json:"createdAt"   gorm:"column:created_at"`
	UpdatedAt   time.Time      `json:"updatedAt"   gorm:"column:updated_at"`

	Key string `json:"key,omitempty" gorm:"-"` // Temporary field only populated during creation/rotation
}

func (ApiKey) TableName() string {
	return "api_keys"
}

// PermissionList is stored as a JSON array. The "*" entry grants every scope.
type PermissionList []string

func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		p = PermissionList{}
	}
	return json.Marshal(p)
}

func (p *PermissionList) Scan(value any) error {
	if value == nil {
		*p = PermissionList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported permissions column type %T", value)
	}

	return json.Unmarshal(data, p)
}

func (p PermissionList) Contains(scope string) bool {
	for _, permission := range p {
		if permission == "*" || permission == scope {
			return true
		}
	}
	return false
}
