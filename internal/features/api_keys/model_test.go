package api_keys

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_Contains_ExactScope_ReturnsTrue(t *testing.T) {
	permissions := PermissionList{"payments:read", "payments:write"}

	assert.True(t, permissions.Contains("payments:read"))
	assert.False(t, permissions.Contains("refunds:write"))
}

func Test_Contains_Wildcard_GrantsEveryScope(t *testing.T) {
	permissions := PermissionList{"*"}

	assert.True(t, permissions.Contains("payments:read"))
	assert.True(t, permissions.Contains("anything:at:all"))
}

func Test_Contains_EmptyList_GrantsNothing(t *testing.T) {
	permissions := PermissionList{}

	assert.False(t, permissions.Contains("payments:read"))
}

func Test_Scan_NullColumn_YieldsEmptyList(t *testing.T) {
	var permissions PermissionList

	err := permissions.Scan(nil)

	assert.NoError(t, err)
	assert.Empty(t, permissions)
}

func Test_Scan_JSONBytes_RestoresEntries(t *testing.T) {
	var permissions PermissionList

	err := permissions.Scan([]byte(`["payments:read","*"]`))

	assert.NoError(t, err)
	assert.Equal(t, PermissionList{"payments:read", "*"}, permissions)
}

func Test_Value_NilList_EncodesEmptyArray(t *testing.T) {
	var permissions PermissionList

	value, err := permissions.Value()

	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value.([]byte)))
}

func Test_MarshalJSON_ApiKey_NeverExposesHash(t *testing.T) {
	apiKey := &ApiKey{
		ID:          uuid.New(),
		MerchantID:  uuid.New(),
		Name:        "checkout backend",
		KeyPrefix:   DevelopmentKeyPrefix,
		KeyHash:     "$2a$12$secretdigest",
		Environment: KeyEnvironmentDevelopment,
		Permissions: PermissionList{"payments:read"},
		Status:      ApiKeyStatusActive,
	}

	encoded, err := json.Marshal(apiKey)

	assert.NoError(t, err)
	assert.NotContains(t, string(encoded), "secretdigest")
	assert.NotContains(t, string(encoded), "keyHash")
}
