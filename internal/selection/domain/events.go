package domain

import (
	"context"
	"time"
)

// SelectionCompletedEvent 选择完成事件，下游确认/仓位服务消费
type SelectionCompletedEvent struct {
	SelectionID string     `json:"selection_id"`
	Symbol      string     `json:"symbol"`
	SpotPrice   float64    `json:"spot_price"`
	Bias        Bias       `json:"bias"`
	Strike      float64    `json:"strike"`
	OptionType  OptionType `json:"option_type"`
	TotalScore  float64    `json:"total_score"`
	Delta       float64    `json:"delta"`
	Theta       float64    `json:"theta"`
	LadderSize  int        `json:"ladder_size"`
	OccurredOn  time.Time  `json:"occurred_on"`
}

// SelectionRejectedEvent 无可选合约事件
type SelectionRejectedEvent struct {
	SelectionID string            `json:"selection_id"`
	Symbol      string            `json:"symbol"`
	SpotPrice   float64           `json:"spot_price"`
	Bias        Bias              `json:"bias"`
	Reason      NoCandidateReason `json:"reason"`
	OccurredOn  time.Time         `json:"occurred_on"`
}

// EventPublisher 领域事件发布端口。实现方从 ctx 取事务句柄，
// 事件与业务数据同事务落库
type EventPublisher interface {
	PublishSelectionCompleted(ctx context.Context, event SelectionCompletedEvent) error
	PublishSelectionRejected(ctx context.Context, event SelectionRejectedEvent) error
}
