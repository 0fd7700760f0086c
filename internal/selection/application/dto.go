package application

import (
	"time"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

// SelectionDTO 对外返回的选择结果视图
type SelectionDTO struct {
	ID          string                    `json:"id"`
	Symbol      string                    `json:"symbol"`
	SpotPrice   float64                   `json:"spot_price"`
	Bias        domain.Bias               `json:"bias"`
	ATMStrike   float64                   `json:"atm_strike"`
	NoCandidate bool                      `json:"no_candidate"`
	Reason      domain.NoCandidateReason  `json:"reason,omitempty"`
	Best        *domain.ScoredCandidate   `json:"best,omitempty"`
	Ladder      []domain.ScoredCandidate  `json:"ladder,omitempty"`
	Skipped     []domain.SkippedCandidate `json:"skipped,omitempty"`
	EvaluatedAt time.Time                 `json:"evaluated_at"`
}

func toSelectionDTO(record *domain.SelectionRecord) *SelectionDTO {
	if record == nil {
		return nil
	}
	return &SelectionDTO{
		ID:          record.ID,
		Symbol:      record.Symbol,
		SpotPrice:   record.Request.SpotPrice,
		Bias:        record.Request.Bias,
		ATMStrike:   record.Result.ATMStrike,
		NoCandidate: record.Result.NoCandidate,
		Reason:      record.Result.Reason,
		Best:        record.Result.Best,
		Ladder:      record.Result.Ladder,
		Skipped:     record.Result.Skipped,
		EvaluatedAt: record.EvaluatedAt,
	}
}
