package api_keys

import (
	"time"

	"quotaguard/internal/storage"

	"github.com/google/uuid"
)

type ApiKeyRepository struct{}

func (r *ApiKeyRepository) Create(apiKey *ApiKey) error {
	if apiKey.ID == uuid.Nil {
		apiKey.ID = uuid.New()
	}

	now := time.Now().UTC()
	if apiKey.CreatedAt.IsZero() {
		apiKey.CreatedAt = now
	}
	if apiKey.UpdatedAt.IsZero() {
		apiKey.UpdatedAt = now
	}

	return storage.GetDb().Create(apiKey).Error
}

func (r *ApiKeyRepository) GetByID(apiKeyID uuid.UUID) (*ApiKey, error) {
	var apiKey ApiKey

	err := storage.GetDb().
		Where("id = ?", apiKeyID).
		First(&apiKey).Error

	if err != nil {
		return nil, err
	}

	return &apiKey, nil
}

// GetByPrefix returns every record carrying the prefix regardless of status.
// Validation needs non-active records too so expiry can be materialized lazily.
func (r *ApiKeyRepository) GetByPrefix(keyPrefix string) ([]*ApiKey, error) {
	var apiKeys []*ApiKey

	err := storage.GetDb().
		Where("key_prefix = ?", keyPrefix).
		Order("created_at DESC").
		Find(&apiKeys).Error

	return apiKeys, err
}

func (r *ApiKeyRepository) GetByMerchantID(merchantID uuid.UUID) ([]*ApiKey, error) {
	var apiKeys []*ApiKey

	err := storage.GetDb().
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&apiKeys).Error

	return apiKeys, err
}

func (r *ApiKeyRepository) Update(apiKey *ApiKey) error {
	apiKey.UpdatedAt = time.Now().UTC()
	return storage.GetDb().Save(apiKey).Error
}

// MarkExpired transitions a single key ACTIVE -> EXPIRED. The status guard
// makes concurrent lazy-expiry attempts transition the record exactly once.
func (r *ApiKeyRepository) MarkExpired(apiKeyID uuid.UUID) (bool, error) {
	result := storage.GetDb().
		Model(&ApiKey{}).
		Where("id = ? AND status = ?", apiKeyID, ApiKeyStatusActive).
		Updates(map[string]any{
			"status":     ApiKeyStatusExpired,
			"updated_at": time.Now().UTC(),
		})

	return result.RowsAffected > 0, result.Error
}

// MarkAllExpired sweeps every active key whose expiry has passed.
func (r *ApiKeyRepository) MarkAllExpired(now time.Time) (int64, error) {
	result := storage.GetDb().
		Model(&ApiKey{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", ApiKeyStatusActive, now).
		Updates(map[string]any{
			"status":     ApiKeyStatusExpired,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}

func (r *ApiKeyRepository) MarkRevoked(apiKeyID uuid.UUID) (bool, error) {
	result := storage.GetDb().
		Model(&ApiKey{}).
		Where("id = ? AND status = ?", apiKeyID, ApiKeyStatusActive).
		Updates(map[string]any{
			"status":     ApiKeyStatusRevoked,
			"updated_at": time.Now().UTC(),
		})

	return result.RowsAffected > 0, result.Error
}

func (r *ApiKeyRepository) TouchLastUsed(apiKeyID uuid.UUID, usedAt time.Time) error {
	return storage.GetDb().
		Model(&ApiKey{}).
		Where("id = ?", apiKeyID).
		Update("last_used_at", usedAt).Error
}
