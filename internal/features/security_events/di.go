package security_events

import (
	"quotaguard/internal/util/logger"
)

var securityEventRepository = &SecurityEventRepository{}

var securityEventService = &SecurityEventService{
	eventRepository: securityEventRepository,
	logger:          logger.GetLogger(),
}

var securityEventController = &SecurityEventController{
	eventService: securityEventService,
}

func GetSecurityEventService() *SecurityEventService {
	return securityEventService
}

func GetSecurityEventController() *SecurityEventController {
	return securityEventController
}
