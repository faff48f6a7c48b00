// Package console is the render layer of the client: it turns bus events
// into terminal output and terminal input into core operations. It holds no
// document or transcript state of its own; everything it shows comes from
// the registry snapshot or an event payload.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/infrastructure/api"
)

type Console struct {
	registry ports.RegistryReader
	chat     ports.QuerySubmitter
	uploader ports.Uploader
	deleter  ports.DeleteRequester
	bus      ports.EventBus

	in  io.Reader
	mu  sync.Mutex
	out io.Writer
}

func New(
	registry ports.RegistryReader,
	chat ports.QuerySubmitter,
	uploader ports.Uploader,
	deleter ports.DeleteRequester,
	bus ports.EventBus,
	in io.Reader,
	out io.Writer,
) *Console {
	return &Console{
		registry: registry,
		chat:     chat,
		uploader: uploader,
		deleter:  deleter,
		bus:      bus,
		in:       in,
		out:      out,
	}
}

// Run pumps events and reads commands until the input closes or ctx is
// cancelled. It returns nil on a clean /quit or EOF.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.startEventPump(ctx); err != nil {
		return fmt.Errorf("subscribe to events: %w", err)
	}

	c.printf("Type a question, or /help for commands.")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			if quit := c.dispatch(ctx, line); quit {
				return nil
			}
		}
	}
}

// dispatch handles one input line and reports whether the loop should end.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	// A pending deletion captures the next yes/no answer.
	if id, pending := c.deleter.Pending(); pending {
		switch strings.ToLower(line) {
		case "y", "yes":
			if err := c.deleter.Confirm(ctx); err != nil {
				c.printf("delete failed: %v", userMessage(err))
			}
			return false
		case "n", "no":
			c.deleter.Cancel()
			c.printf("Deletion of document %s cancelled.", id)
			return false
		}
		// Any other input falls through and leaves the confirmation armed.
	}

	if !strings.HasPrefix(line, "/") {
		if err := c.chat.Submit(ctx, line); err != nil {
			c.printf("%v", userMessage(err))
		}
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/docs":
		c.renderDocuments()
	case "/upload":
		if len(fields) < 2 {
			c.printf("usage: /upload <path>")
			return false
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, "/upload"))
		if err := c.uploader.SubmitPath(ctx, path); err != nil {
			c.printf("%v", userMessage(err))
		}
	case "/delete":
		if len(fields) != 2 {
			c.printf("usage: /delete <id>")
			return false
		}
		if err := c.deleter.RequestDelete(fields[1]); err != nil {
			c.printf("%v", userMessage(err))
			return false
		}
		c.renderConfirmPrompt(fields[1])
	case "/help":
		c.renderHelp()
	case "/quit", "/exit":
		return true
	default:
		c.printf("unknown command %s, try /help", fields[0])
	}
	return false
}

func (c *Console) renderConfirmPrompt(id string) {
	name := id
	if doc, ok := c.registry.Current().Get(id); ok {
		name = doc.Filename
	}
	c.printf("Delete %s? [y/n]", name)
}

func (c *Console) renderDocuments() {
	snapshot := c.registry.Current()
	if snapshot.Len() == 0 {
		c.printf("No documents uploaded yet.")
		return
	}
	for _, doc := range snapshot.Documents() {
		c.printf("  %-6s %-12s %s", doc.ID, doc.Status, doc.Filename)
	}
}

func (c *Console) renderHelp() {
	c.printf(strings.Join([]string{
		"  /docs           list documents and their processing status",
		"  /upload <path>  upload a document (" + strings.Join(acceptedExtensionsLine(), ", ") + ")",
		"  /delete <id>    delete a document (asks for confirmation)",
		"  /quit           exit",
		"  anything else is sent as a question",
	}, "\n"))
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// userMessage strips the internal error chain down to the part worth
// showing in the terminal.
func userMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrBusy):
		return "Another operation is still running, try again in a moment."
	case domain.IsKind(err, domain.ErrUnsupportedFileType):
		return "Unsupported file type. Accepted: " + strings.Join(acceptedExtensionsLine(), ", ") + "."
	default:
		return api.Detail(err)
	}
}
