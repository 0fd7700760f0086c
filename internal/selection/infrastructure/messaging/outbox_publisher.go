// Package messaging 选择服务的事件出站实现（Outbox 模式）
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

// OutboxMessage 待投递的领域事件
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	EventID   string    `gorm:"type:varchar(36);index"`
	EventType string    `gorm:"type:varchar(100);index"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "selection_outbox_messages"
}

const (
	statusPending = "pending"
	statusSent    = "sent"
)

// OutboxEventPublisher 实现 EventPublisher 接口，事件先落库再由
// relay 异步投递到 Kafka
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// PublishSelectionCompleted 发布选择完成事件
func (p *OutboxEventPublisher) PublishSelectionCompleted(ctx context.Context, event domain.SelectionCompletedEvent) error {
	return p.publishEvent(ctx, "SelectionCompletedEvent", event)
}

// PublishSelectionRejected 发布无可选合约事件
func (p *OutboxEventPublisher) PublishSelectionRejected(ctx context.Context, event domain.SelectionRejectedEvent) error {
	return p.publishEvent(ctx, "SelectionRejectedEvent", event)
}

// publishEvent 通用事件发布方法。ctx 携带事务时在事务内写入，
// 与业务数据一起提交或回滚
func (p *OutboxEventPublisher) publishEvent(ctx context.Context, eventType string, event interface{}) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := OutboxMessage{
		ID:        uuid.NewString(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   string(eventData),
		Status:    statusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return p.getDB(ctx).WithContext(ctx).Create(&message).Error
}

func (p *OutboxEventPublisher) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.GetTx(ctx); tx != nil {
		if gormTx, ok := tx.(*gorm.DB); ok {
			return gormTx
		}
	}
	return p.db
}

// PendingMessages 查询待投递的消息
func (p *OutboxEventPublisher) PendingMessages(ctx context.Context, batchSize int) ([]OutboxMessage, error) {
	var messages []OutboxMessage
	err := p.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error
	return messages, err
}

// MarkSent 标记消息已投递
func (p *OutboxEventPublisher) MarkSent(ctx context.Context, message *OutboxMessage) error {
	return p.db.WithContext(ctx).Model(message).Updates(map[string]interface{}{
		"status":     statusSent,
		"updated_at": time.Now(),
	}).Error
}

// CleanupProcessedMessages 清理已投递的历史消息
func (p *OutboxEventPublisher) CleanupProcessedMessages(ctx context.Context, before time.Time) error {
	return p.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", statusSent, before).
		Delete(&OutboxMessage{}).Error
}
