package config

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

var shouldShutdown atomic.Bool

// StartListeningForShutdownSignal flips the shutdown flag when SIGINT or
// SIGTERM arrives so background workers can drain between ticks.
func StartListeningForShutdownSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals
		shouldShutdown.Store(true)
	}()
}

func IsShouldShutdown() bool {
	return shouldShutdown.Load()
}
