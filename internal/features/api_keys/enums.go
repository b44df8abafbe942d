package api_keys

type ApiKeyStatus string

const (
	ApiKeyStatusActive  ApiKeyStatus = "ACTIVE"
	ApiKeyStatusRevoked ApiKeyStatus = "REVOKED"
	ApiKeyStatusExpired ApiKeyStatus = "EXPIRED"
)

type KeyEnvironment string

const (
	KeyEnvironmentProduction  KeyEnvironment = "production"
	KeyEnvironmentDevelopment KeyEnvironment = "development"
)
