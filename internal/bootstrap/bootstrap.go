package bootstrap

import (
	"context"

	"github.com/docassist/docchat/internal/config"
	"github.com/docassist/docchat/internal/core/usecase"
	"github.com/docassist/docchat/internal/infrastructure/api"
	"github.com/docassist/docchat/internal/infrastructure/bus"
	"github.com/docassist/docchat/internal/infrastructure/resilience"
	"github.com/docassist/docchat/internal/observability/metrics"
)

// App wires the client core together: one remote service client, one
// registry, one poller, and the three workflows that share them.
type App struct {
	Config config.Config

	Bus      *bus.Watermill
	Metrics  *metrics.ClientMetrics
	Registry *usecase.Registry
	Sync     *usecase.Synchronizer
	Upload   *usecase.UploadWorkflow
	Delete   *usecase.DeleteWorkflow
	Chat     *usecase.ChatSession
}

func New(cfg config.Config) *App {
	exec := resilience.NewExecutor(resilience.Config{
		MaxAttempts:    cfg.RetryMaxAttempt,
		BreakerEnabled: cfg.BreakerEnabled,
	})
	service := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, exec)

	eventBus := bus.NewWatermill()
	m := metrics.NewClientMetrics()

	registry := usecase.NewRegistry(eventBus, m)
	sync := usecase.NewSynchronizer(service, registry, eventBus, m, usecase.SynchronizerConfig{
		Interval:      cfg.PollInterval,
		MaxBackoff:    cfg.PollMaxBackoff,
		RefreshPerSec: cfg.RefreshPerSec,
		RefreshBurst:  cfg.RefreshBurst,
	})

	upload := usecase.NewUploadWorkflow(service, sync, eventBus, m, cfg.MaxUploadBytes)
	chat := usecase.NewChatSession(service, registry, eventBus, m, cfg.MaxTranscript, cfg.WelcomeMessage)

	// Deletion defers to whoever else is talking to the server, mirroring
	// the disabled state of the delete buttons during upload and query.
	del := usecase.NewDeleteWorkflow(service, sync, eventBus, m, func() bool {
		return upload.Uploading() || chat.Querying()
	})

	return &App{
		Config:   cfg,
		Bus:      eventBus,
		Metrics:  m,
		Registry: registry,
		Sync:     sync,
		Upload:   upload,
		Delete:   del,
		Chat:     chat,
	}
}

// Start begins background polling. ctx bounds the poller's lifetime.
func (a *App) Start(ctx context.Context) {
	a.Sync.Start(ctx)
}

func (a *App) Close() {
	a.Sync.Stop()
	_ = a.Bus.Close()
}
