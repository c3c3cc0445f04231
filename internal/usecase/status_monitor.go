package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hummatch/internal/domain"
	"hummatch/internal/ports"
)

// StatusMonitor checks service liveness and catalog size once per process.
type StatusMonitor struct {
	client  ports.RecognitionClient
	events  ports.EventSink
	log     *zap.Logger
	timeout time.Duration

	once   sync.Once
	mu     sync.Mutex
	status domain.ServiceStatus
}

func NewStatusMonitor(client ports.RecognitionClient, events ports.EventSink, log *zap.Logger, timeout time.Duration) *StatusMonitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusMonitor{
		client:  client,
		events:  events,
		log:     log.Named("status"),
		timeout: timeout,
	}
}

// Run performs the startup probes on first call and returns the resulting
// status. Later calls return the cached status without probing again.
func (m *StatusMonitor) Run(ctx context.Context) domain.ServiceStatus {
	m.once.Do(func() { m.probe(ctx) })
	return m.Status()
}

// Status returns the last known service status.
func (m *StatusMonitor) Status() domain.ServiceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *StatusMonitor) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := m.client.ProbeLiveness(ctx)
		if err != nil {
			m.log.Warn("recognition service unreachable", zap.Error(err))
		}
		m.update(func(s *domain.ServiceStatus) { s.Reachable = err == nil })
	}()

	go func() {
		defer wg.Done()
		count, err := m.client.FetchCatalogSize(ctx)
		if err != nil || count < 0 {
			m.log.Warn("catalog size unavailable", zap.Error(err))
			count = 0
		}
		m.update(func(s *domain.ServiceStatus) { s.CatalogSize = count })
	}()

	wg.Wait()
	m.update(func(s *domain.ServiceStatus) { s.Checked = true })
	m.log.Info("service status checked", zap.Bool("reachable", m.Status().Reachable), zap.Int("songs", m.Status().CatalogSize))
}

func (m *StatusMonitor) update(apply func(*domain.ServiceStatus)) {
	m.mu.Lock()
	apply(&m.status)
	snapshot := m.status
	m.mu.Unlock()
	m.events.ServiceStatusChanged(snapshot)
}
