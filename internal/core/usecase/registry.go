package usecase

import (
	"log/slog"
	"sync"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/observability/metrics"
)

// Registry holds the client's view of the server-owned document list. State
// changes only by atomic wholesale snapshot replacement; there is no partial
// mutation API, so a slow and a fast refresh can never interleave into a
// torn view.
type Registry struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot

	bus     ports.EventBus
	metrics *metrics.ClientMetrics
}

func NewRegistry(bus ports.EventBus, m *metrics.ClientMetrics) *Registry {
	return &Registry{
		snapshot: domain.NewSnapshot(nil),
		bus:      bus,
		metrics:  m,
	}
}

func (r *Registry) Current() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Replace swaps in a new snapshot and notifies readers. Only the
// synchronizer calls this; workflows go through RefreshNow instead of
// mutating the registry directly.
func (r *Registry) Replace(snapshot domain.Snapshot) {
	r.mu.Lock()
	r.snapshot = snapshot
	r.mu.Unlock()

	r.metrics.SetRegistryCounts(snapshot)
	if r.bus != nil {
		if err := r.bus.Publish(ports.TopicRegistryReplaced, snapshot.Documents()); err != nil {
			slog.Warn("registry_event_publish_failed", "error", err)
		}
	}
}
