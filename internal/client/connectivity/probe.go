package connectivity

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	apiclient "github.com/iudanet/devsync/internal/client/api"
)

const probeTimeout = 5 * time.Second

// HealthProbe определяет доступность сервера периодическим GET /health
type HealthProbe struct {
	api    *apiclient.Client
	logger *slog.Logger
	stop   chan struct{}
	url    string
	*notifier
	wg       sync.WaitGroup
	interval time.Duration
	stopOnce sync.Once
}

// NewHealthProbe создает probe для сервера baseURL.
// Начальный статус offline до первой успешной проверки.
func NewHealthProbe(baseURL string, interval time.Duration, logger *slog.Logger) *HealthProbe {
	return &HealthProbe{
		api:      apiclient.NewClient(strings.TrimRight(baseURL, "/"), ""),
		logger:   logger,
		stop:     make(chan struct{}),
		url:      strings.TrimRight(baseURL, "/") + "/health",
		notifier: newNotifier(false),
		interval: interval,
	}
}

// Start выполняет первую проверку синхронно и запускает периодические проверки
func (p *HealthProbe) Start(ctx context.Context) {
	p.check(ctx)

	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop останавливает периодические проверки
func (p *HealthProbe) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

func (p *HealthProbe) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *HealthProbe) check(ctx context.Context) {
	online := p.probe(ctx)
	if p.set(online) {
		p.logger.Info("connectivity changed", slog.Bool("online", online), slog.String("url", p.url))
	}
}

func (p *HealthProbe) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	health, err := p.api.Health(ctx)
	if err != nil {
		p.logger.Debug("health probe failed", slog.Any("error", err))
		return false
	}
	p.logger.Debug("relay is healthy", slog.String("version", health.Version))
	return true
}
