package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

// QueryService 处理所有选择相关的查询操作
type QueryService struct {
	repo   domain.SelectionRepository
	cache  domain.SelectionCache
	logger *slog.Logger
}

// NewQueryService 构造函数；cache 允许为 nil
func NewQueryService(repo domain.SelectionRepository, cache domain.SelectionCache, logger *slog.Logger) *QueryService {
	return &QueryService{repo: repo, cache: cache, logger: logger}
}

// GetSelection 按 ID 获取选择结果
func (q *QueryService) GetSelection(ctx context.Context, id string) (*SelectionDTO, error) {
	record, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrSelectionNotFound
	}
	return toSelectionDTO(record), nil
}

// GetLatest 获取某标的最近一次选择结果，优先读缓存
func (q *QueryService) GetLatest(ctx context.Context, symbol string) (*SelectionDTO, error) {
	if q.cache != nil {
		record, err := q.cache.GetLatest(ctx, symbol)
		if err != nil {
			q.logger.WarnContext(ctx, "latest selection cache read failed", "symbol", symbol, "error", err)
		} else if record != nil {
			return toSelectionDTO(record), nil
		}
	}

	record, err := q.repo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrSelectionNotFound
	}
	return toSelectionDTO(record), nil
}

// ListSelections 分页查询某标的的历史选择结果
func (q *QueryService) ListSelections(ctx context.Context, symbol string, limit, offset int) ([]*SelectionDTO, int64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := q.repo.List(ctx, symbol, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*SelectionDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, toSelectionDTO(r))
	}
	return dtos, total, nil
}
