package ports

import (
	"context"
	"io"

	"github.com/docassist/docchat/internal/core/domain"
)

// DocumentService is the remote retrieval/answer service as seen by the
// client core. List is idempotent and safe to call concurrently; Upload is
// accepted immediately and processed asynchronously server-side, so the
// returned state never reflects final document status.
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	UploadDocument(ctx context.Context, filename string, body io.Reader) error
	DeleteDocument(ctx context.Context, id string) error
	AnswerQuery(ctx context.Context, question string) (domain.Answer, error)
}

// EventBus carries state-change events from the core to the render layer.
// Publish must not block on slow subscribers.
type EventBus interface {
	Publish(topic string, payload any) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}
