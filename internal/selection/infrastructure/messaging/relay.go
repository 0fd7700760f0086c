package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/wyfcoding/optionselector/pkg/mq"
)

// OutboxRelay 周期性扫描 outbox 表并投递到 Kafka
type OutboxRelay struct {
	outbox    *OutboxEventPublisher
	producer  *mq.KafkaProducer
	topic     string
	batchSize int
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewOutboxRelay 创建 relay；interval 为扫描周期，retention 为已投递
// 消息的保留时长
func NewOutboxRelay(
	outbox *OutboxEventPublisher,
	producer *mq.KafkaProducer,
	topic string,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
		retention: 24 * time.Hour,
		logger:    logger,
	}
}

// Run 阻塞运行直至 ctx 取消
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
			}
		case <-cleanup.C:
			before := time.Now().Add(-r.retention)
			if err := r.outbox.CleanupProcessedMessages(ctx, before); err != nil {
				r.logger.ErrorContext(ctx, "outbox cleanup failed", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) error {
	messages, err := r.outbox.PendingMessages(ctx, r.batchSize)
	if err != nil {
		return err
	}

	for i := range messages {
		msg := &messages[i]
		// Payload 已是序列化好的事件 JSON，原样转发
		if err := r.producer.SendMessage(ctx, r.topic, msg.EventID, json.RawMessage(msg.Payload)); err != nil {
			// 投递失败保持 pending，下一轮重试
			r.logger.WarnContext(ctx, "failed to relay outbox message",
				"event_id", msg.EventID, "event_type", msg.EventType, "error", err)
			continue
		}
		if err := r.outbox.MarkSent(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
