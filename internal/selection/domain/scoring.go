package domain

import "math"

// Sub-score point budgets. The greeks subtotal weighs 50% into the
// total, liquidity 30%, and the proximity bonus is additive on top.
const (
	deltaPoints = 30.0
	gammaPoints = 30.0
	thetaPoints = 20.0
	vegaPoints  = 20.0

	greeksWeight    = 0.5
	liquidityWeight = 0.3
)

// ScoreCandidate 组合 Greeks 质量、流动性与 ATM 邻近加成为单一总分
func (c EngineConfig) ScoreCandidate(candidate Candidate, greeks GreeksResult, liquidityScore float64, preferATM bool) ScoreBreakdown {
	greeksScore := c.greeksScore(greeks)

	liquidity := clamp(liquidityScore, 0, 100)

	bonus := 0.0
	if preferATM {
		bonus = c.proximityBonus(candidate.OffsetFromATM)
	}

	total := clamp(greeksScore*greeksWeight+liquidity*liquidityWeight+bonus, 0, 100)

	return ScoreBreakdown{
		GreeksScore:    greeksScore,
		LiquidityScore: liquidity,
		ProximityBonus: bonus,
		TotalScore:     total,
	}
}

func (c EngineConfig) greeksScore(g GreeksResult) float64 {
	deltaScore := bandScore(math.Abs(g.Delta), c.DeltaMin, c.DeltaIdealLow, c.DeltaIdealHigh, c.DeltaMax, deltaPoints)

	var gammaScore float64
	switch {
	case g.Gamma <= c.GammaFloor:
		gammaScore = 0
	case g.Gamma >= c.GammaTarget:
		gammaScore = gammaPoints
	default:
		gammaScore = gammaPoints * (g.Gamma - c.GammaFloor) / (c.GammaTarget - c.GammaFloor)
	}

	decay := math.Abs(g.Theta)
	ceiling := math.Abs(c.ThetaCeiling)
	var thetaScore float64
	if decay < ceiling {
		thetaScore = thetaPoints * (1 - decay/ceiling)
	}

	vegaScore := bandScore(g.Vega, c.VegaMin, c.VegaIdealLow, c.VegaIdealHigh, c.VegaMax, vegaPoints)

	return clamp(deltaScore, 0, deltaPoints) +
		clamp(gammaScore, 0, gammaPoints) +
		clamp(thetaScore, 0, thetaPoints) +
		clamp(vegaScore, 0, vegaPoints)
}

// proximityBonus 按 |offset| 查表；窗口外的偏移不加分（正常情况下
// 不会出现，仅作兜底）
func (c EngineConfig) proximityBonus(offset int) float64 {
	if offset < 0 {
		offset = -offset
	}
	if offset >= len(c.ProximityBonus) {
		return 0
	}
	return c.ProximityBonus[offset]
}

// bandScore gives full credit inside [idealLow, idealHigh] and decays
// linearly to zero at min/max on either side.
func bandScore(x, min, idealLow, idealHigh, max, points float64) float64 {
	switch {
	case x >= idealLow && x <= idealHigh:
		return points
	case x <= min || x >= max:
		return 0
	case x < idealLow:
		return points * (x - min) / (idealLow - min)
	default:
		return points * (max - x) / (max - idealHigh)
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
