package domain

import (
	"fmt"
	"math"
	"sort"
)

// Engine evaluates one market snapshot and picks the best contract to
// trade. It holds only immutable configuration plus the injected
// liquidity port, so a single Engine is safe for concurrent callers;
// every call is a pure function of its request.
type Engine struct {
	cfg       EngineConfig
	liquidity LiquidityProvider
}

// NewEngine 构建选择引擎；liquidity 为 nil 时使用占位实现
func NewEngine(cfg EngineConfig, liquidity LiquidityProvider) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if liquidity == nil {
		liquidity = NewStaticLiquidityProvider(defaultLiquidityScore)
	}
	return &Engine{cfg: cfg, liquidity: liquidity}, nil
}

// defaultLiquidityScore 占位流动性分数，待真实数据源接入后替换
const defaultLiquidityScore = 50.0

// Config returns a copy of the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Select runs the single-pass selection state machine:
// collect candidates for the bias-eligible option type, compute IV and
// Greeks per candidate, filter on the caller's delta/gamma thresholds,
// and rank what survives. A NEUTRAL bias or an empty survivor set ends
// in the NoCandidate terminal state instead of an error.
func (e *Engine) Select(req SelectionRequest) (SelectionResult, error) {
	if err := req.Validate(); err != nil {
		return SelectionResult{}, err
	}

	atm := ATMStrike(req.SpotPrice, req.StrikeInterval)

	optionType, directional := optionTypeForBias(req.Bias)
	if !directional {
		return SelectionResult{
			NoCandidate: true,
			Reason:      ReasonNoDirectionalBias,
			ATMStrike:   atm,
		}, nil
	}

	strikes, err := GenerateStrikeRange(req.SpotPrice, req.StrikeInterval, e.cfg.HalfWidth)
	if err != nil {
		return SelectionResult{}, err
	}

	// COLLECTING: build and evaluate every candidate in the window.
	scored := make([]ScoredCandidate, 0, len(strikes))
	var skipped []SkippedCandidate
	for i, strike := range strikes {
		offset := i - e.cfg.HalfWidth
		candidate := Candidate{
			Strike:        strike,
			OptionType:    optionType,
			Moneyness:     classifyMoneyness(offset, strike, req.SpotPrice, optionType),
			OffsetFromATM: offset,
		}

		iv := e.cfg.EstimateIV(candidate)
		greeks, err := ComputeGreeks(GreeksInput{
			Spot:         req.SpotPrice,
			Strike:       strike,
			IV:           iv,
			DaysToExpiry: req.DaysToExpiry,
			OptionType:   optionType,
			RiskFreeRate: e.cfg.RiskFreeRate,
		})
		if err != nil {
			// One bad strike must not sink the call.
			skipped = append(skipped, SkippedCandidate{
				Strike:     strike,
				OptionType: optionType,
				Cause:      err.Error(),
			})
			continue
		}

		score := e.cfg.ScoreCandidate(candidate, greeks, e.liquidity.Score(candidate), req.PreferATM)
		scored = append(scored, ScoredCandidate{Candidate: candidate, Greeks: greeks, Score: score})
	}

	if len(scored) == 0 {
		return SelectionResult{
			NoCandidate: true,
			Reason:      ReasonNumericallyInvalid,
			Skipped:     skipped,
			ATMStrike:   atm,
		}, nil
	}

	// FILTERING: hard thresholds on |delta| and gamma.
	survivors := scored[:0:0]
	for _, sc := range scored {
		absDelta := math.Abs(sc.Greeks.Delta)
		if absDelta < req.MinDelta || absDelta > req.MaxDelta {
			continue
		}
		if sc.Greeks.Gamma < req.MinGamma {
			continue
		}
		survivors = append(survivors, sc)
	}
	if len(survivors) == 0 {
		return SelectionResult{
			NoCandidate: true,
			Reason:      ReasonThresholdsNotMet,
			Skipped:     skipped,
			ATMStrike:   atm,
		}, nil
	}

	// RANKING: total score desc, then closer to ATM, then CALL before
	// PUT for full determinism.
	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.Score.TotalScore != b.Score.TotalScore {
			return a.Score.TotalScore > b.Score.TotalScore
		}
		ao, bo := abs(a.Candidate.OffsetFromATM), abs(b.Candidate.OffsetFromATM)
		if ao != bo {
			return ao < bo
		}
		return a.Candidate.OptionType < b.Candidate.OptionType
	})

	best := survivors[0]
	return SelectionResult{
		Best:      &best,
		Ladder:    survivors,
		Skipped:   skipped,
		ATMStrike: atm,
	}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// String implements fmt.Stringer for log lines.
func (r SelectionResult) String() string {
	if r.NoCandidate {
		return fmt.Sprintf("no candidate (%s)", r.Reason)
	}
	return fmt.Sprintf("%s %.2f score %.2f (%d evaluated)",
		r.Best.Candidate.OptionType, r.Best.Candidate.Strike, r.Best.Score.TotalScore, len(r.Ladder))
}
