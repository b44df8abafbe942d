package api_keys

import (
	"fmt"

	"github.com/google/uuid"
)

// CreateTestApiKey issues a key through the real service so tests exercise
// the same generation path as production.
func CreateTestApiKey(merchantID uuid.UUID, environment KeyEnvironment, permissions []string) *ApiKey {
	apiKey, err := GetApiKeyService().GenerateKey(merchantID, &CreateApiKeyRequestDTO{
		Name:        "test key " + uuid.New().String()[:8],
		Environment: string(environment),
		Permissions: permissions,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create test API key: %v", err))
	}

	return apiKey
}

// CreateTestApiKeyExpiringIn issues a key with an expiry offset in days.
func CreateTestApiKeyExpiringIn(merchantID uuid.UUID, days int) *ApiKey {
	apiKey, err := GetApiKeyService().GenerateKey(merchantID, &CreateApiKeyRequestDTO{
		Name:          "test expiring key " + uuid.New().String()[:8],
		Environment:   string(KeyEnvironmentDevelopment),
		ExpiresInDays: &days,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create test API key: %v", err))
	}

	return apiKey
}
