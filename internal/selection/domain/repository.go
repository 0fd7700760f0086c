package domain

import (
	"context"
	"time"
)

// SelectionRecord is the persisted outcome of one selection call,
// ladder included, kept for audit and stop-loss calibration.
type SelectionRecord struct {
	ID          string
	Symbol      string
	Request     SelectionRequest
	Result      SelectionResult
	EvaluatedAt time.Time
}

// SelectionRepository 选择结果仓储端口
type SelectionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Save(ctx context.Context, record *SelectionRecord) error
	GetByID(ctx context.Context, id string) (*SelectionRecord, error)
	GetLatest(ctx context.Context, symbol string) (*SelectionRecord, error)
	List(ctx context.Context, symbol string, limit, offset int) ([]*SelectionRecord, int64, error)
}

// SelectionCache 最新选择结果缓存端口，按 symbol 维度存取
type SelectionCache interface {
	SetLatest(ctx context.Context, record *SelectionRecord) error
	GetLatest(ctx context.Context, symbol string) (*SelectionRecord, error)
}
