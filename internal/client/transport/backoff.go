package transport

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// newReconnectBackoff экспоненциальная задержка переподключения с джиттером.
// Повторяет бесконечно, каждая задержка не превышает max.
func newReconnectBackoff(base, max time.Duration) retry.Backoff {
	b := retry.NewExponential(base)
	b = retry.WithJitterPercent(defaultJitterPercent, b)
	return retry.WithCappedDuration(max, b)
}

// newSendBackoff ограниченное число повторов для fallback доставки
func newSendBackoff(base time.Duration, retries uint64) retry.Backoff {
	b := retry.NewExponential(base)
	return retry.WithMaxRetries(retries, b)
}
