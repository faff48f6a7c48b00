package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/observability/metrics"
)

type deleteState int

const (
	deleteIdle deleteState = iota
	deleteConfirmPending
)

// DeleteWorkflow is the two-phase removal gate: RequestDelete remembers a
// target and waits for Confirm or Cancel. Confirmation is single-use; every
// path ends back at idle with the target cleared. The registry is never
// touched optimistically — removal shows up via refresh.
type DeleteWorkflow struct {
	service   ports.DocumentService
	refresher ports.Refresher
	bus       ports.EventBus
	metrics   *metrics.ClientMetrics

	// busy reports whether another mutating operation (upload, query) is in
	// flight; deletion is disabled meanwhile to keep refresh interleavings
	// simple.
	busy func() bool

	mu     sync.Mutex
	state  deleteState
	target string
}

func NewDeleteWorkflow(
	service ports.DocumentService,
	refresher ports.Refresher,
	bus ports.EventBus,
	m *metrics.ClientMetrics,
	busy func() bool,
) *DeleteWorkflow {
	if busy == nil {
		busy = func() bool { return false }
	}
	return &DeleteWorkflow{
		service:   service,
		refresher: refresher,
		bus:       bus,
		metrics:   m,
		busy:      busy,
	}
}

// RequestDelete arms the confirmation gate for the given document. No
// network call happens until Confirm. Requesting while already pending
// retargets the pending confirmation.
func (w *DeleteWorkflow) RequestDelete(id string) error {
	if w.busy() {
		return domain.WrapError(domain.ErrBusy, "delete", fmt.Errorf("another operation is in progress"))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = deleteConfirmPending
	w.target = id
	return nil
}

// Confirm fires the delete for the remembered target. Calling it while idle
// is a no-op.
func (w *DeleteWorkflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if w.state != deleteConfirmPending {
		w.mu.Unlock()
		return nil
	}
	id := w.target
	w.state = deleteIdle
	w.target = ""
	w.mu.Unlock()

	err := w.service.DeleteDocument(ctx, id)
	w.metrics.RecordOperation("delete", err)
	if err != nil {
		publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Delete failed: %v", err)))
		return err
	}

	publishNotice(w.bus, domain.InfoNotice("Document deleted."))
	w.refresher.RefreshNow(ctx)
	return nil
}

// Cancel disarms a pending confirmation without any network call.
func (w *DeleteWorkflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = deleteIdle
	w.target = ""
}

// Pending returns the armed target id, if any.
func (w *DeleteWorkflow) Pending() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target, w.state == deleteConfirmPending
}
