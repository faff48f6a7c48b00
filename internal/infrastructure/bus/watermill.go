package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Watermill is the in-process event bus between the state core and the
// render layer. Payloads are JSON so subscribers never share mutable state
// with publishers.
type Watermill struct {
	pubSub *gochannel.GoChannel
}

func NewWatermill() *Watermill {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	return &Watermill{pubSub: pubSub}
}

func (b *Watermill) Publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

func (b *Watermill) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Watermill) Close() error {
	return b.pubSub.Close()
}
