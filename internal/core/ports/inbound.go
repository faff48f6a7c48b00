package ports

import (
	"context"

	"github.com/docassist/docchat/internal/core/domain"
)

// RegistryReader is the read side of the document registry. Snapshots may be
// replaced between any two calls; callers must not assume a document seen
// earlier is still present.
type RegistryReader interface {
	Current() domain.Snapshot
}

// Refresher triggers an out-of-band registry refresh, used by workflows
// after a mutation so new server state appears before the next poll tick.
type Refresher interface {
	RefreshNow(ctx context.Context)
}

// QuerySubmitter is the inbound contract for asking questions.
type QuerySubmitter interface {
	Submit(ctx context.Context, text string) error
}

// Uploader is the inbound contract for submitting a file, shared by the
// file-picker and drop entry points.
type Uploader interface {
	SubmitPath(ctx context.Context, path string) error
}

// DeleteRequester drives the two-phase removal flow. RequestDelete arms a
// confirmation for one document; Confirm performs the armed removal exactly
// once; Cancel disarms without side effects.
type DeleteRequester interface {
	RequestDelete(id string) error
	Confirm(ctx context.Context) error
	Cancel()
	Pending() (string, bool)
}
