package usecase

import (
	"log/slog"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
)

func publishNotice(bus ports.EventBus, notice domain.Notice) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ports.TopicNotice, notice); err != nil {
		slog.Warn("notice_publish_failed", "error", err)
	}
}
