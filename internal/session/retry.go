package session

import (
	"context"
	"time"

	"mirrorlab/internal/domain"
)

// WithRetry runs op up to attempts times with a fixed pause between
// tries. Connection faults and timeouts are retried; authentication and
// command faults return immediately since repeating them cannot
// succeed. attempts of 1 (or less) means a single try.
func WithRetry(ctx context.Context, attempts int, backoff time.Duration, op func() (string, error)) (string, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		output, err := op()
		if err == nil {
			return output, nil
		}
		lastErr = err

		switch domain.KindOf(err) {
		case domain.FaultAuth, domain.FaultCommand:
			return "", err
		}
	}
	return "", lastErr
}
