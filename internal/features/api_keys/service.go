package api_keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	request_logs "quotaguard/internal/features/request_logs"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type ApiKeyService struct {
	apiKeyRepository     *ApiKeyRepository
	requestLogRepository *request_logs.RequestLogRepository
	logger               *slog.Logger

	singleflight singleflight.Group // Dedupes concurrent prefix scans for the same credential
}

const (
	ProductionKeyPrefix  = "qg_live_"
	DevelopmentKeyPrefix = "qg_test_"
	KeySuffixLength      = 32

	defaultUsageRangeDays = 30
)

var (
	ErrApiKeyNotFound     = errors.New("API key not found")
	ErrInvalidEnvironment = errors.New("unknown key environment")
)

func prefixForEnvironment(environment KeyEnvironment) (string, error) {
	switch environment {
	case KeyEnvironmentProduction:
		return ProductionKeyPrefix, nil
	case KeyEnvironmentDevelopment:
		return DevelopmentKeyPrefix, nil
	default:
		return "", ErrInvalidEnvironment
	}
}

// keyLookupError keeps a missing record distinct from a storage failure:
// only the former is a 404, anything else must surface as a dependency
// error.
func keyLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrApiKeyNotFound
	}
	return fmt.Errorf("failed to load API key: %w", err)
}

func environmentForKey(plaintext string) (KeyEnvironment, string, bool) {
	if len(plaintext) > len(ProductionKeyPrefix) && plaintext[:len(ProductionKeyPrefix)] == ProductionKeyPrefix {
		return KeyEnvironmentProduction, ProductionKeyPrefix, true
	}
	if len(plaintext) > len(DevelopmentKeyPrefix) && plaintext[:len(DevelopmentKeyPrefix)] == DevelopmentKeyPrefix {
		return KeyEnvironmentDevelopment, DevelopmentKeyPrefix, true
	}
	return "", "", false
}

func (s *ApiKeyService) GenerateKey(merchantID uuid.UUID, request *CreateApiKeyRequestDTO) (*ApiKey, error) {
	environment := KeyEnvironment(request.Environment)

	prefix, err := prefixForEnvironment(environment)
	if err != nil {
		return nil, err
	}

	fullKey, keyHash, err := s.generateSecureKey(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	permissions := request.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	var expiresAt *time.Time
	if request.ExpiresInDays != nil {
		expiry := time.Now().UTC().AddDate(0, 0, *request.ExpiresInDays)
		expiresAt = &expiry
	}

	apiKey := &ApiKey{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		Name:        request.Name,
		KeyPrefix:   prefix,
		KeyHash:     keyHash,
		Environment: environment,
		Permissions: permissions,
		Status:      ApiKeyStatusActive,
		ExpiresAt:   expiresAt,
	}

	if err := s.apiKeyRepository.Create(apiKey); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	// The plaintext leaves the service exactly once
	apiKey.Key = fullKey

	return apiKey, nil
}

// ValidateKey resolves a plaintext credential to the identity stored at
// creation time. Every failure mode (unknown prefix, no hash match, revoked,
// expired) collapses to Valid=false so callers cannot enumerate which check
// failed.
func (s *ApiKeyService) ValidateKey(plaintext string) (*KeyValidation, error) {
	_, prefix, ok := environmentForKey(plaintext)
	if !ok {
		return &KeyValidation{Valid: false}, nil
	}

	// Dedupe key is never persisted; it only collapses concurrent scans
	// of the same credential into one verification pass.
	dedupeKey := hex.EncodeToString(sha256OfKey(plaintext))

	result, err, _ := s.singleflight.Do(dedupeKey, func() (any, error) {
		return s.validateAgainstPrefix(plaintext, prefix)
	})
	if err != nil {
		return nil, err
	}

	validation, ok := result.(*KeyValidation)
	if !ok {
		return nil, fmt.Errorf("failed to cast validation result")
	}

	return validation, nil
}

func (s *ApiKeyService) validateAgainstPrefix(plaintext, prefix string) (*KeyValidation, error) {
	candidates, err := s.apiKeyRepository.GetByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load key candidates: %w", err)
	}

	for _, candidate := range candidates {
		if !VerifySecret(plaintext, candidate.KeyHash) {
			continue
		}

		if candidate.Status != ApiKeyStatusActive {
			return &KeyValidation{Valid: false}, nil
		}

		if candidate.ExpiresAt != nil && candidate.ExpiresAt.Before(time.Now().UTC()) {
			// Lazy expiry: materialize the terminal state on first read.
			// The guarded update transitions the record at most once even
			// under concurrent validation.
			if _, err := s.apiKeyRepository.MarkExpired(candidate.ID); err != nil {
				s.logger.Error("failed to lazily expire API key",
					slog.String("keyId", candidate.ID.String()),
					slog.String("error", err.Error()))
			}
			return &KeyValidation{Valid: false}, nil
		}

		s.touchLastUsed(candidate.ID)

		return &KeyValidation{
			Valid:       true,
			MerchantID:  candidate.MerchantID,
			KeyID:       candidate.ID,
			Permissions: candidate.Permissions,
		}, nil
	}

	return &KeyValidation{Valid: false}, nil
}

// touchLastUsed is fire-and-forget: last-write-wins, and a failed touch
// must never affect the validation outcome.
func (s *ApiKeyService) touchLastUsed(apiKeyID uuid.UUID) {
	go func() {
		if err := s.apiKeyRepository.TouchLastUsed(apiKeyID, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to update last_used_at",
				slog.String("keyId", apiKeyID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

// RotateKey issues a replacement credential carrying the old key's identity.
// The old record stays ACTIVE: with graceDays > 0 its expiry is stamped so
// the sweep retires it, otherwise an explicit revoke is required. The two
// writes are not transactional; a failed deprecation leaves two active keys
// that the sweep or a revoke reconciles.
func (s *ApiKeyService) RotateKey(apiKeyID uuid.UUID, graceDays int) (*ApiKey, error) {
	oldKey, err := s.apiKeyRepository.GetByID(apiKeyID)
	if err != nil {
		return nil, keyLookupError(err)
	}

	newKey, err := s.GenerateKey(oldKey.MerchantID, &CreateApiKeyRequestDTO{
		Name:        oldKey.Name,
		Environment: string(oldKey.Environment),
		Permissions: oldKey.Permissions,
	})
	if err != nil {
		return nil, err
	}

	oldKey.Name = fmt.Sprintf("%s (deprecated %s)", oldKey.Name, time.Now().UTC().Format("2006-01-02"))
	if graceDays > 0 {
		graceExpiry := time.Now().UTC().AddDate(0, 0, graceDays)
		oldKey.ExpiresAt = &graceExpiry
	}

	if err := s.apiKeyRepository.Update(oldKey); err != nil {
		s.logger.Error("failed to deprecate rotated key, old key remains active",
			slog.String("oldKeyId", oldKey.ID.String()),
			slog.String("newKeyId", newKey.ID.String()),
			slog.String("error", err.Error()))
	}

	return newKey, nil
}

// RevokeKey is terminal and idempotent: revoking an already revoked or
// expired key returns the record unchanged.
func (s *ApiKeyService) RevokeKey(apiKeyID uuid.UUID) (*ApiKey, error) {
	apiKey, err := s.apiKeyRepository.GetByID(apiKeyID)
	if err != nil {
		return nil, keyLookupError(err)
	}

	if apiKey.Status != ApiKeyStatusActive {
		return apiKey, nil
	}

	if _, err := s.apiKeyRepository.MarkRevoked(apiKeyID); err != nil {
		return nil, fmt.Errorf("failed to revoke API key: %w", err)
	}

	return s.apiKeyRepository.GetByID(apiKeyID)
}

// ProcessExpiredKeys sweeps active keys whose expiry has passed. Safe to run
// repeatedly and concurrently: the guarded update transitions each record at
// most once.
func (s *ApiKeyService) ProcessExpiredKeys() (int64, error) {
	count, err := s.apiKeyRepository.MarkAllExpired(time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired keys: %w", err)
	}

	if count > 0 {
		s.logger.Info("expired API keys swept", slog.Int64("count", count))
	}

	return count, nil
}

func (s *ApiKeyService) GetKeyUsage(apiKeyID uuid.UUID, start, end *time.Time) (*KeyUsageResponseDTO, error) {
	apiKey, err := s.apiKeyRepository.GetByID(apiKeyID)
	if err != nil {
		return nil, keyLookupError(err)
	}

	rangeEnd := time.Now().UTC()
	if end != nil {
		rangeEnd = *end
	}

	rangeStart := rangeEnd.AddDate(0, 0, -defaultUsageRangeDays)
	if start != nil {
		rangeStart = *start
	}

	total, err := s.requestLogRepository.CountByKey(apiKeyID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate request totals: %w", err)
	}

	byEndpoint, err := s.requestLogRepository.CountByKeyPerEndpoint(apiKeyID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate endpoint counts: %w", err)
	}

	byStatusCode, err := s.requestLogRepository.CountByKeyPerStatus(apiKeyID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}

	byStatus := make(map[string]int64, len(byStatusCode))
	for statusCode, count := range byStatusCode {
		byStatus[fmt.Sprintf("%d", statusCode)] = count
	}

	avgResponseTime, err := s.requestLogRepository.AvgResponseTimeByKey(apiKeyID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate response times: %w", err)
	}

	return &KeyUsageResponseDTO{
		TotalRequests:      total,
		RequestsByEndpoint: byEndpoint,
		RequestsByStatus:   byStatus,
		AvgResponseTimeMs:  avgResponseTime,
		LastUsed:           apiKey.LastUsedAt,
	}, nil
}

func (s *ApiKeyService) GetMerchantApiKeys(merchantID uuid.UUID) (*GetApiKeysResponseDTO, error) {
	apiKeys, err := s.apiKeyRepository.GetByMerchantID(merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	return &GetApiKeysResponseDTO{ApiKeys: apiKeys}, nil
}

func (s *ApiKeyService) generateSecureKey(prefix string) (fullKey, hash string, err error) {
	suffixBytes := make([]byte, KeySuffixLength/2) // hex encoding doubles the length
	if _, err := rand.Read(suffixBytes); err != nil {
		return "", "", err
	}

	fullKey = prefix + hex.EncodeToString(suffixBytes)

	hash, err = HashSecret(fullKey)
	if err != nil {
		return "", "", err
	}

	return fullKey, hash, nil
}

func sha256OfKey(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}
