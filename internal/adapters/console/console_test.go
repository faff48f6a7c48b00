package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/core/usecase"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type busStub struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func newBusStub() *busStub {
	return &busStub{subs: map[string][]chan []byte{}}
}

func (b *busStub) Publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		ch <- raw
	}
	return nil
}

func (b *busStub) Subscribe(_ context.Context, topic string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch, nil
}

func (b *busStub) Close() error { return nil }

type chatStub struct {
	mu        sync.Mutex
	submitted []string
}

func (c *chatStub) Submit(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = append(c.submitted, text)
	return nil
}

type uploaderStub struct {
	mu    sync.Mutex
	paths []string
}

func (u *uploaderStub) SubmitPath(_ context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.paths = append(u.paths, path)
	return nil
}

type deleterStub struct {
	mu        sync.Mutex
	pendingID string
	confirmed []string
	cancelled int
}

func (d *deleterStub) RequestDelete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingID = id
	return nil
}

func (d *deleterStub) Confirm(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pendingID != "" {
		d.confirmed = append(d.confirmed, d.pendingID)
		d.pendingID = ""
	}
	return nil
}

func (d *deleterStub) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingID = ""
	d.cancelled++
}

func (d *deleterStub) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingID, d.pendingID != ""
}

func runScript(t *testing.T, c *Console) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func newTestConsole(input string) (*Console, *syncBuffer, *chatStub, *uploaderStub, *deleterStub) {
	reg := usecase.NewRegistry(nil, nil)
	reg.Replace(domain.NewSnapshot([]domain.Document{
		{ID: "5", Filename: "notes.txt", Status: domain.StatusReady},
	}))
	out := &syncBuffer{}
	chat := &chatStub{}
	uploader := &uploaderStub{}
	deleter := &deleterStub{}
	c := New(reg, chat, uploader, deleter, newBusStub(), strings.NewReader(input), out)
	return c, out, chat, uploader, deleter
}

func TestDocsCommandListsSnapshot(t *testing.T) {
	c, out, _, _, _ := newTestConsole("/docs\n")
	runScript(t, c)

	if !strings.Contains(out.String(), "notes.txt") || !strings.Contains(out.String(), "READY") {
		t.Fatalf("expected document listing, got:\n%s", out.String())
	}
}

func TestPlainLineIsSubmittedAsQuestion(t *testing.T) {
	c, _, chat, _, _ := newTestConsole("what is in my notes?\n")
	runScript(t, c)

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.submitted) != 1 || chat.submitted[0] != "what is in my notes?" {
		t.Fatalf("expected question forwarded to chat, got %v", chat.submitted)
	}
}

func TestUploadCommandForwardsPath(t *testing.T) {
	c, _, _, uploader, _ := newTestConsole("/upload /tmp/my notes.txt\n")
	runScript(t, c)

	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	if len(uploader.paths) != 1 || uploader.paths[0] != "/tmp/my notes.txt" {
		t.Fatalf("expected path with spaces preserved, got %v", uploader.paths)
	}
}

func TestDeleteFlowConfirms(t *testing.T) {
	c, out, _, _, deleter := newTestConsole("/delete 5\ny\n")
	runScript(t, c)

	if !strings.Contains(out.String(), "[y/n]") || !strings.Contains(out.String(), "notes.txt") {
		t.Fatalf("expected confirmation prompt naming the file, got:\n%s", out.String())
	}
	deleter.mu.Lock()
	defer deleter.mu.Unlock()
	if len(deleter.confirmed) != 1 || deleter.confirmed[0] != "5" {
		t.Fatalf("expected confirmed delete of 5, got %v", deleter.confirmed)
	}
}

func TestDeleteFlowCancels(t *testing.T) {
	c, _, chat, _, deleter := newTestConsole("/delete 5\nn\n")
	runScript(t, c)

	deleter.mu.Lock()
	defer deleter.mu.Unlock()
	if deleter.cancelled != 1 || len(deleter.confirmed) != 0 {
		t.Fatalf("expected cancel without delete, got cancelled=%d confirmed=%v", deleter.cancelled, deleter.confirmed)
	}
	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.submitted) != 0 {
		t.Fatalf("the yes/no answer must not reach the chat, got %v", chat.submitted)
	}
}

func TestNoticeEventsAreRendered(t *testing.T) {
	reg := usecase.NewRegistry(nil, nil)
	bus := newBusStub()
	out := &syncBuffer{}
	in, inW := io.Pipe()
	c := New(reg, &chatStub{}, &uploaderStub{}, &deleterStub{}, bus, in, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()

	waitForOutput(t, out, "Type a question")
	if err := bus.Publish(ports.TopicNotice, domain.ErrorNotice("Document service unreachable")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitForOutput(t, out, "[!] Document service unreachable")

	cancel()
	_ = inW.Close()
	<-done
}

func waitForOutput(t *testing.T, out *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), substr) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in output:\n%s", substr, out.String())
}
