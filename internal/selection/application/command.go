// Package application 期权选择应用层
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
	"github.com/wyfcoding/optionselector/pkg/metrics"
)

// RunSelectionCommand 发起一次选择的全部输入
type RunSelectionCommand struct {
	Symbol         string
	SpotPrice      float64
	Bias           string
	StrikeInterval float64
	DaysToExpiry   float64
	MinDelta       float64
	MaxDelta       float64
	MinGamma       float64
	PreferATM      bool
}

// CommandService 处理选择相关的命令操作
type CommandService struct {
	engine    *domain.Engine
	repo      domain.SelectionRepository
	cache     domain.SelectionCache
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCommandService 创建命令服务；cache、publisher、metrics 允许为 nil
func NewCommandService(
	engine *domain.Engine,
	repo domain.SelectionRepository,
	cache domain.SelectionCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *CommandService {
	return &CommandService{
		engine:    engine,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// RunSelection 执行一次完整的选择：评估、落库、缓存、发布事件。
// 引擎本身是纯函数，时间戳与 ID 在这一层生成。
func (s *CommandService) RunSelection(ctx context.Context, cmd RunSelectionCommand) (*SelectionDTO, error) {
	start := time.Now()

	req := domain.SelectionRequest{
		Symbol:         cmd.Symbol,
		SpotPrice:      cmd.SpotPrice,
		Bias:           domain.Bias(cmd.Bias),
		StrikeInterval: cmd.StrikeInterval,
		DaysToExpiry:   cmd.DaysToExpiry,
		MinDelta:       cmd.MinDelta,
		MaxDelta:       cmd.MaxDelta,
		MinGamma:       cmd.MinGamma,
		PreferATM:      cmd.PreferATM,
	}

	result, err := s.engine.Select(req)
	if err != nil {
		return nil, err
	}

	record := &domain.SelectionRecord{
		ID:          uuid.NewString(),
		Symbol:      cmd.Symbol,
		Request:     req,
		Result:      result,
		EvaluatedAt: time.Now(),
	}

	// 结果与事件同事务落库：要么都提交，要么都回滚
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, record); err != nil {
			return err
		}
		return s.publishOutcome(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, record); err != nil {
			// 缓存失败不影响主流程
			s.logger.WarnContext(ctx, "failed to cache latest selection",
				"selection_id", record.ID, "symbol", cmd.Symbol, "error", err)
		}
	}

	s.recordMetrics(result, time.Since(start))

	s.logger.InfoContext(ctx, "selection completed",
		"selection_id", record.ID,
		"symbol", cmd.Symbol,
		"bias", cmd.Bias,
		"outcome", result.String(),
	)

	return toSelectionDTO(record), nil
}

func (s *CommandService) publishOutcome(ctx context.Context, record *domain.SelectionRecord) error {
	if s.publisher == nil {
		return nil
	}

	if record.Result.NoCandidate {
		return s.publisher.PublishSelectionRejected(ctx, domain.SelectionRejectedEvent{
			SelectionID: record.ID,
			Symbol:      record.Symbol,
			SpotPrice:   record.Request.SpotPrice,
			Bias:        record.Request.Bias,
			Reason:      record.Result.Reason,
			OccurredOn:  record.EvaluatedAt,
		})
	}

	best := record.Result.Best
	return s.publisher.PublishSelectionCompleted(ctx, domain.SelectionCompletedEvent{
		SelectionID: record.ID,
		Symbol:      record.Symbol,
		SpotPrice:   record.Request.SpotPrice,
		Bias:        record.Request.Bias,
		Strike:      best.Candidate.Strike,
		OptionType:  best.Candidate.OptionType,
		TotalScore:  best.Score.TotalScore,
		Delta:       best.Greeks.Delta,
		Theta:       best.Greeks.Theta,
		LadderSize:  len(record.Result.Ladder),
		OccurredOn:  record.EvaluatedAt,
	})
}

func (s *CommandService) recordMetrics(result domain.SelectionResult, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.SelectionsTotal.Inc()
	if result.NoCandidate {
		s.metrics.NoCandidateTotal.Inc()
	}
	s.metrics.CandidatesEvaluated.Add(float64(len(result.Ladder) + len(result.Skipped)))
	s.metrics.SelectionDuration.Observe(elapsed.Seconds())
}
