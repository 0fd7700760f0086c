package domain

import (
	"errors"
)

var (
	ErrInvalidConfiguration = errors.New("invalid selection configuration")
	ErrNumerical            = errors.New("numerical error in greeks calculation")
	ErrSelectionNotFound    = errors.New("selection not found")
)

// Bias 方向偏好，由外部信号服务提供
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

type Moneyness string

const (
	MoneynessITM Moneyness = "ITM"
	MoneynessATM Moneyness = "ATM"
	MoneynessOTM Moneyness = "OTM"
)

// NoCandidateReason 无可选合约的原因
type NoCandidateReason string

const (
	ReasonNoDirectionalBias  NoCandidateReason = "no directional bias"
	ReasonThresholdsNotMet   NoCandidateReason = "no candidate met Greeks thresholds"
	ReasonNumericallyInvalid NoCandidateReason = "all candidates numerically invalid"
)

// Candidate is one strike/type pair in the evaluation window.
// Immutable once built by the range generator.
type Candidate struct {
	Strike        float64    `json:"strike"`
	OptionType    OptionType `json:"option_type"`
	Moneyness     Moneyness  `json:"moneyness"`
	OffsetFromATM int        `json:"offset_from_atm"`
}

// GreeksResult carries the closed-form sensitivities for one candidate.
// Theta is currency decay per calendar day; vega is per one vol point.
type GreeksResult struct {
	Delta  float64 `json:"delta"`
	Gamma  float64 `json:"gamma"`
	Theta  float64 `json:"theta"`
	Vega   float64 `json:"vega"`
	IVUsed float64 `json:"iv_used"`
}

type ScoreBreakdown struct {
	GreeksScore    float64 `json:"greeks_score"`
	LiquidityScore float64 `json:"liquidity_score"`
	ProximityBonus float64 `json:"proximity_bonus"`
	TotalScore     float64 `json:"total_score"`
}

// ScoredCandidate 评分后的候选合约，是排序与返回的基本单元
type ScoredCandidate struct {
	Candidate Candidate      `json:"candidate"`
	Greeks    GreeksResult   `json:"greeks"`
	Score     ScoreBreakdown `json:"score"`
}

// SkippedCandidate records a candidate dropped for a numerical failure.
// A single bad strike never aborts the whole selection.
type SkippedCandidate struct {
	Strike     float64    `json:"strike"`
	OptionType OptionType `json:"option_type"`
	Cause      string     `json:"cause"`
}

// SelectionResult is the terminal outcome of one selection call. Either
// Best is set and Ladder holds every scored candidate in rank order, or
// NoCandidate is true and Reason explains why. "No trade" is an ordinary
// value, not an error.
type SelectionResult struct {
	Best        *ScoredCandidate   `json:"best,omitempty"`
	Ladder      []ScoredCandidate  `json:"ladder,omitempty"`
	Skipped     []SkippedCandidate `json:"skipped,omitempty"`
	NoCandidate bool               `json:"no_candidate"`
	Reason      NoCandidateReason  `json:"reason,omitempty"`
	ATMStrike   float64            `json:"atm_strike"`
}

// SelectionRequest 单次选择调用的全部输入
type SelectionRequest struct {
	Symbol         string  `json:"symbol"`
	SpotPrice      float64 `json:"spot_price"`
	Bias           Bias    `json:"bias"`
	StrikeInterval float64 `json:"strike_interval"`
	DaysToExpiry   float64 `json:"days_to_expiry"`
	MinDelta       float64 `json:"min_delta"`
	MaxDelta       float64 `json:"max_delta"`
	MinGamma       float64 `json:"min_gamma"`
	PreferATM      bool    `json:"prefer_atm"`
}

// Validate rejects a request before any computation happens.
func (r SelectionRequest) Validate() error {
	if r.SpotPrice <= 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("spot_price must be positive"))
	}
	if r.StrikeInterval <= 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("strike_interval must be positive"))
	}
	if r.DaysToExpiry < 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("days_to_expiry must be non-negative"))
	}
	if r.MinDelta > r.MaxDelta {
		return errors.Join(ErrInvalidConfiguration, errors.New("min_delta must not exceed max_delta"))
	}
	if r.MinGamma < 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("min_gamma must be non-negative"))
	}
	return nil
}

// optionTypeForBias maps the directional signal onto the eligible side.
func optionTypeForBias(bias Bias) (OptionType, bool) {
	switch bias {
	case BiasBullish:
		return OptionTypeCall, true
	case BiasBearish:
		return OptionTypePut, true
	default:
		return "", false
	}
}
