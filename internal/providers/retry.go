package providers

import (
	"fmt"
	"time"

	"glpi-notify/internal/logging"
)

// retry runs fn up to attempts times, sleeping delay between failures.
// Only outbound channel calls are retried; inventory fetches and probes
// fail the run on first error.
func retry(logger *logging.Logger, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		logger.Warnf("Attempt %d/%d failed: %v", i, attempts, lastErr)
		if i < attempts {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
