package request_logs

import (
	"quotaguard/internal/util/logger"
)

var requestLogRepository = &RequestLogRepository{}

var requestLogService = &RequestLogService{
	requestLogRepository: requestLogRepository,
	logger:               logger.GetLogger(),
}

func GetRequestLogRepository() *RequestLogRepository {
	return requestLogRepository
}

func GetRequestLogService() *RequestLogService {
	return requestLogService
}
