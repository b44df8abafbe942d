package api_keys

import (
	request_logs "quotaguard/internal/features/request_logs"
	"quotaguard/internal/util/logger"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var apiKeyRepository = &ApiKeyRepository{}

var apiKeyService = &ApiKeyService{
	apiKeyRepository,
	request_logs.GetRequestLogRepository(),
	logger.GetLogger(),
	singleflight.Group{},
}

var apiKeyController = &ApiKeyController{
	apiKeyService,
	rate.NewLimiter(rate.Limit(20), 40), // 20 RPS with burst of 40
}

var apiKeySweepService = &ApiKeySweepService{
	apiKeyService,
	logger.GetLogger(),
	nil,
	nil,
	sync.WaitGroup{},
}

func GetApiKeyService() *ApiKeyService {
	return apiKeyService
}

func GetApiKeyController() *ApiKeyController {
	return apiKeyController
}

func GetApiKeySweepService() *ApiKeySweepService {
	return apiKeySweepService
}
