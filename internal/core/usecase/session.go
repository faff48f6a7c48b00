package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/observability/metrics"
)

const noReadyDocumentsAdvisory = "No document is ready yet. Upload one and wait for processing to finish before asking a question."

// ChatSession owns the append-only transcript and the single in-flight
// query slot. Message ids come from a session-local monotonic counter, so
// messages created in the same instant (a user turn and its error fallback)
// still order deterministically.
type ChatSession struct {
	service  ports.DocumentService
	registry ports.RegistryReader
	bus      ports.EventBus
	metrics  *metrics.ClientMetrics

	maxTranscript int

	mu       sync.Mutex
	messages []domain.ChatMessage
	nextID   atomic.Int64
	querying atomic.Bool
}

func NewChatSession(
	service ports.DocumentService,
	registry ports.RegistryReader,
	bus ports.EventBus,
	m *metrics.ClientMetrics,
	maxTranscript int,
	welcome string,
) *ChatSession {
	if maxTranscript <= 0 {
		maxTranscript = 200
	}
	s := &ChatSession{
		service:       service,
		registry:      registry,
		bus:           bus,
		metrics:       m,
		maxTranscript: maxTranscript,
	}
	if welcome != "" {
		s.append(domain.RoleAssistant, welcome, nil)
	}
	return s
}

func (s *ChatSession) Querying() bool {
	return s.querying.Load()
}

// Messages returns a copy of the transcript in append order.
func (s *ChatSession) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit runs one question round trip. Blank input is a no-op. With no
// READY document in the current snapshot it appends a single advisory
// message and never touches the network — a guided local response, not an
// error. A failed query resolves into an assistant-role fallback message,
// so Submit reports an error only when the submission itself was refused
// (another query in flight).
func (s *ChatSession) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if s.registry.Current().ReadyCount() == 0 {
		s.append(domain.RoleAssistant, noReadyDocumentsAdvisory, nil)
		return nil
	}

	if !s.querying.CompareAndSwap(false, true) {
		return domain.WrapError(domain.ErrBusy, "query", fmt.Errorf("a query is already in progress"))
	}
	defer s.querying.Store(false)

	s.append(domain.RoleUser, text, nil)

	start := time.Now()
	answer, err := s.service.AnswerQuery(ctx, text)
	s.metrics.RecordOperation("query", err)
	s.metrics.ObserveQueryDuration(time.Since(start))
	if err != nil {
		slog.Warn("query_failed", "error", err)
		s.append(domain.RoleAssistant, fmt.Sprintf("Sorry, something went wrong: %s", failureText(err)), nil)
		return nil
	}

	s.append(domain.RoleAssistant, answer.Text, answer.Sources)
	return nil
}

// failureText reduces a failed query's error chain to something readable in
// the transcript. A service-reported detail wins when one exists; transport
// trouble collapses to a short unreachable line.
func failureText(err error) string {
	var detailed interface{ UserMessage() string }
	if errors.As(err, &detailed) {
		if msg := detailed.UserMessage(); msg != "" {
			return msg
		}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return "the document service did not respond"
	}
	return err.Error()
}

func (s *ChatSession) append(role domain.MessageRole, text string, sources []string) {
	msg := domain.ChatMessage{
		ID:   s.nextID.Add(1),
		Role: role,
		Text: text,
	}
	if len(sources) > 0 {
		msg.Sources = make([]string, len(sources))
		copy(msg.Sources, sources)
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	// Bounded growth: drop the oldest turns once the cap is reached.
	if overflow := len(s.messages) - s.maxTranscript; overflow > 0 {
		s.messages = append(s.messages[:0:0], s.messages[overflow:]...)
	}
	length := len(s.messages)
	s.mu.Unlock()

	s.metrics.SetTranscriptLength(length)
	if s.bus != nil {
		if err := s.bus.Publish(ports.TopicChatAppended, msg); err != nil {
			slog.Warn("chat_event_publish_failed", "error", err)
		}
	}
}
