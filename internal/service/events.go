package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const publishTimeout = 5 * time.Second

// publish never fails the caller; a lost event is logged.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
