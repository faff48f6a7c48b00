package console

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/core/usecase"
)

// startEventPump subscribes to the core's topics and renders each event as
// it arrives. Rendering never feeds back into the core.
func (c *Console) startEventPump(ctx context.Context) error {
	notices, err := c.bus.Subscribe(ctx, ports.TopicNotice)
	if err != nil {
		return err
	}
	chat, err := c.bus.Subscribe(ctx, ports.TopicChatAppended)
	if err != nil {
		return err
	}
	registry, err := c.bus.Subscribe(ctx, ports.TopicRegistryReplaced)
	if err != nil {
		return err
	}

	go func() {
		// The poller replaces the snapshot on every successful cycle, so the
		// summary line is deduplicated here rather than printed per poll.
		var lastSummary string
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-notices:
				if !ok {
					return
				}
				c.renderNotice(raw)
			case raw, ok := <-chat:
				if !ok {
					return
				}
				c.renderChatMessage(raw)
			case raw, ok := <-registry:
				if !ok {
					return
				}
				lastSummary = c.renderRegistryChange(raw, lastSummary)
			}
		}
	}()
	return nil
}

func (c *Console) renderNotice(raw []byte) {
	var notice domain.Notice
	if err := json.Unmarshal(raw, &notice); err != nil {
		slog.Warn("notice_decode_failed", "error", err)
		return
	}
	switch notice.Kind {
	case domain.NoticeError:
		c.printf("[!] %s", notice.Text)
	default:
		c.printf("[*] %s", notice.Text)
	}
}

func (c *Console) renderChatMessage(raw []byte) {
	var msg domain.ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("chat_decode_failed", "error", err)
		return
	}
	switch msg.Role {
	case domain.RoleUser:
		c.printf("you> %s", msg.Text)
	default:
		if len(msg.Sources) > 0 {
			c.printf("assistant> %s\n  sources: %s", msg.Text, strings.Join(msg.Sources, ", "))
		} else {
			c.printf("assistant> %s", msg.Text)
		}
	}
}

func (c *Console) renderRegistryChange(raw []byte, lastSummary string) string {
	var docs []domain.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		slog.Warn("registry_decode_failed", "error", err)
		return lastSummary
	}
	summary := summarize(docs)
	if summary != lastSummary && lastSummary != "" {
		c.printf("[*] documents: %s", summary)
	}
	return summary
}

func summarize(docs []domain.Document) string {
	if len(docs) == 0 {
		return "none"
	}
	counts := map[domain.DocumentStatus]int{}
	for _, doc := range docs {
		counts[doc.Status]++
	}
	parts := make([]string, 0, 4)
	for _, status := range []domain.DocumentStatus{
		domain.StatusReady, domain.StatusProcessing, domain.StatusPending, domain.StatusFailed,
	} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(status))))
		}
	}
	return strings.Join(parts, ", ")
}

func acceptedExtensionsLine() []string {
	return usecase.AcceptedExtensions()
}
