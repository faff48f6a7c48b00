package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
)

type serviceFake struct {
	mu          sync.Mutex
	listFn      func(ctx context.Context) ([]domain.Document, error)
	uploadFn    func(ctx context.Context, filename string, body io.Reader) error
	deleteFn    func(ctx context.Context, id string) error
	answerFn    func(ctx context.Context, question string) (domain.Answer, error)
	listCalls   int
	uploadCalls int
	deleteCalls int
	answerCalls int
	deletedIDs  []string
}

func (f *serviceFake) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (f *serviceFake) UploadDocument(ctx context.Context, filename string, body io.Reader) error {
	f.mu.Lock()
	f.uploadCalls++
	fn := f.uploadFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, filename, body)
	}
	return nil
}

func (f *serviceFake) DeleteDocument(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	f.deletedIDs = append(f.deletedIDs, id)
	fn := f.deleteFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return nil
}

func (f *serviceFake) AnswerQuery(ctx context.Context, question string) (domain.Answer, error) {
	f.mu.Lock()
	f.answerCalls++
	fn := f.answerFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, question)
	}
	return domain.Answer{Text: "answer", Sources: []string{}}, nil
}

func (f *serviceFake) calls() (list, upload, del, answer int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.uploadCalls, f.deleteCalls, f.answerCalls
}

type busEvent struct {
	topic   string
	payload any
}

type busFake struct {
	mu     sync.Mutex
	events []busEvent
}

func (f *busFake) Publish(topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{topic: topic, payload: payload})
	return nil
}

func (f *busFake) Subscribe(context.Context, string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (f *busFake) Close() error { return nil }

func (f *busFake) notices() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notice
	for _, ev := range f.events {
		if ev.topic == ports.TopicNotice {
			if n, ok := ev.payload.(domain.Notice); ok {
				out = append(out, n)
			}
		}
	}
	return out
}

func (f *busFake) countTopic(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, ev := range f.events {
		if ev.topic == topic {
			count++
		}
	}
	return count
}

type refresherFake struct {
	mu    sync.Mutex
	calls int
}

func (f *refresherFake) RefreshNow(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *refresherFake) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
