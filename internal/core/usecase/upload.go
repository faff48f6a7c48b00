package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/observability/metrics"
)

// acceptedUploadTypes mirrors the service's supported formats. The filter
// runs entirely client-side; rejected files never reach the network.
var acceptedUploadTypes = map[string]string{
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadWorkflow submits one file at a time. A second submission while one
// is in flight is rejected rather than queued; the uploading flag is the
// single-flight gate and is always cleared, whatever the outcome.
type UploadWorkflow struct {
	service   ports.DocumentService
	refresher ports.Refresher
	bus       ports.EventBus
	metrics   *metrics.ClientMetrics
	maxBytes  int64

	uploading atomic.Bool
}

func NewUploadWorkflow(
	service ports.DocumentService,
	refresher ports.Refresher,
	bus ports.EventBus,
	m *metrics.ClientMetrics,
	maxBytes int64,
) *UploadWorkflow {
	return &UploadWorkflow{
		service:   service,
		refresher: refresher,
		bus:       bus,
		metrics:   m,
		maxBytes:  maxBytes,
	}
}

func (w *UploadWorkflow) Uploading() bool {
	return w.uploading.Load()
}

// SubmitPath is the file-picker entry point.
func (w *UploadWorkflow) SubmitPath(ctx context.Context, path string) error {
	if err := ValidateUploadType(path); err != nil {
		publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Upload rejected: %v", err)))
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Upload failed: %v", err)))
		return fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	if w.maxBytes > 0 {
		info, err := file.Stat()
		if err == nil && info.Size() > w.maxBytes {
			err := domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("file exceeds %d MB limit", w.maxBytes>>20))
			publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Upload rejected: %v", err)))
			return err
		}
	}

	return w.Submit(ctx, filepath.Base(path), file)
}

// Submit is the shared workflow behind both entry points. The filename must
// already carry an accepted extension; callers holding raw bytes (drop-style
// submission) land here directly.
func (w *UploadWorkflow) Submit(ctx context.Context, filename string, body io.Reader) error {
	if err := ValidateUploadType(filename); err != nil {
		publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Upload rejected: %v", err)))
		return err
	}

	if !w.uploading.CompareAndSwap(false, true) {
		return domain.WrapError(domain.ErrBusy, "upload", fmt.Errorf("an upload is already in progress"))
	}
	defer w.uploading.Store(false)

	publishNotice(w.bus, domain.InfoNotice(fmt.Sprintf("Uploading %q...", filename)))

	err := w.service.UploadDocument(ctx, filename, body)
	w.metrics.RecordOperation("upload", err)
	if err != nil {
		publishNotice(w.bus, domain.ErrorNotice(fmt.Sprintf("Upload failed: %v", err)))
		return err
	}

	publishNotice(w.bus, domain.InfoNotice(fmt.Sprintf("%q accepted; processing started.", filename)))
	// Pull the new PENDING/PROCESSING entry in ahead of the next poll tick.
	w.refresher.RefreshNow(ctx)
	return nil
}

// ValidateUploadType filters by extension and its registered MIME type
// before any network call.
func ValidateUploadType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := acceptedUploadTypes[ext]; !ok {
		return domain.WrapError(domain.ErrUnsupportedFileType, "upload",
			fmt.Errorf("%q is not one of %s", ext, strings.Join(AcceptedExtensions(), ", ")))
	}
	return nil
}

func AcceptedExtensions() []string {
	return []string{".txt", ".pdf", ".docx"}
}
