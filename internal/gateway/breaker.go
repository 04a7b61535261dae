package gateway

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sakura-poetry/poetryctl/internal/log"
)

// BreakerConfig tunes the optional circuit breaker around the transport.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive transport failures that opens
	// the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a probe.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

// breakerDoer counts only transport failures. Any HTTP response, whatever
// its status, is a success from the breaker's point of view.
type breakerDoer struct {
	next Doer
	cb   *gobreaker.CircuitBreaker
}

func newBreakerDoer(next Doer, cfg BreakerConfig, logger *log.Logger) *breakerDoer {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}

	settings := gobreaker.Settings{
		Name:        "gateway",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// The caller giving up says nothing about the backend.
			return err == nil || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &breakerDoer{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerDoer) Do(req *http.Request) (*http.Response, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}

func isBreakerOpen(err error) bool {
	return stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests)
}
