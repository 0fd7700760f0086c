package domain

// classifyMoneyness 根据行权价与现价的关系判定 ITM/ATM/OTM
func classifyMoneyness(offset int, strike, spot float64, optionType OptionType) Moneyness {
	if offset == 0 {
		return MoneynessATM
	}
	otm := strike > spot
	if optionType == OptionTypePut {
		otm = strike < spot
	}
	if otm {
		return MoneynessOTM
	}
	return MoneynessITM
}

// EstimateIV maps moneyness onto a volatility estimate. This is a
// documented heuristic, not a market-implied figure: the ATM strike
// takes the base IV, OTM strikes earn a fixed premium per strike step
// up to a ceiling, ITM strikes shed a smaller decrement down to a
// floor. Distance is counted in strike steps from ATM so the estimate
// widens with the window.
func (c EngineConfig) EstimateIV(candidate Candidate) float64 {
	steps := candidate.OffsetFromATM
	if steps < 0 {
		steps = -steps
	}
	switch candidate.Moneyness {
	case MoneynessOTM:
		iv := c.BaseIV + c.OTMStepIV*float64(steps)
		if iv > c.IVCeiling {
			iv = c.IVCeiling
		}
		return iv
	case MoneynessITM:
		iv := c.BaseIV - c.ITMStepIV*float64(steps)
		if iv < c.IVFloor {
			iv = c.IVFloor
		}
		return iv
	default:
		return c.BaseIV
	}
}
