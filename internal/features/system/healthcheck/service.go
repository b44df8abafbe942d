package system_healthcheck

import (
	"fmt"

	"quotaguard/internal/storage"
	counter_utils "quotaguard/internal/util/counter"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

type HealthcheckService struct {
	counterStore counter_utils.Store
}

type HealthStatus struct {
	Status            string  `json:"status"`
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	DiskUsedPercent   float64 `json:"diskUsedPercent"`
}

func (s *HealthcheckService) CheckHealth() (*HealthStatus, error) {
	if err := storage.GetDb().Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("database check failed: %w", err)
	}

	if err := s.counterStore.Ping(); err != nil {
		return nil, fmt.Errorf("counter store check failed: %w", err)
	}

	status := &HealthStatus{Status: "ok"}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryUsedPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("/"); err == nil {
		status.DiskUsedPercent = du.UsedPercent
	}

	return status, nil
}
