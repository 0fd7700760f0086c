package domain

import (
	"fmt"
	"math"
)

const daysPerYear = 365.0

// GreeksInput Black-Scholes 模型输入
type GreeksInput struct {
	Spot         float64
	Strike       float64
	IV           float64
	DaysToExpiry float64
	OptionType   OptionType
	RiskFreeRate float64
}

// ComputeGreeks 计算 Black-Scholes Greeks
//
// Theta is converted to currency decay per calendar day and clamped
// non-positive (a long holder never gains from pure time passage in
// this model). Vega is reported per one volatility point (value/100).
// The expiry day is special-cased: delta collapses to 0 or +/-1 on
// intrinsic moneyness and gamma/theta/vega go to zero instead of
// dividing by zero.
func ComputeGreeks(in GreeksInput) (GreeksResult, error) {
	if in.IV <= 0 {
		return GreeksResult{}, fmt.Errorf("%w: non-positive iv %v", ErrNumerical, in.IV)
	}
	if in.Spot <= 0 || in.Strike <= 0 {
		return GreeksResult{}, fmt.Errorf("%w: non-positive price (spot=%v strike=%v)", ErrNumerical, in.Spot, in.Strike)
	}

	if in.DaysToExpiry == 0 {
		return expiryDayGreeks(in), nil
	}

	T := in.DaysToExpiry / daysPerYear
	sqrtT := math.Sqrt(T)

	d1 := (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate+0.5*in.IV*in.IV)*T) / (in.IV * sqrtT)
	d2 := d1 - in.IV*sqrtT
	pdfD1 := normPDF(d1)

	var delta, thetaAnnual float64
	discount := in.Strike * math.Exp(-in.RiskFreeRate*T)
	if in.OptionType == OptionTypeCall {
		delta = normCDF(d1)
		thetaAnnual = -(in.Spot*pdfD1*in.IV)/(2*sqrtT) - in.RiskFreeRate*discount*normCDF(d2)
	} else {
		delta = normCDF(d1) - 1
		thetaAnnual = -(in.Spot*pdfD1*in.IV)/(2*sqrtT) + in.RiskFreeRate*discount*normCDF(-d2)
	}

	gamma := pdfD1 / (in.Spot * in.IV * sqrtT)
	vega := in.Spot * pdfD1 * sqrtT / 100
	theta := thetaAnnual / daysPerYear
	if theta > 0 {
		theta = 0
	}

	result := GreeksResult{
		Delta:  delta,
		Gamma:  gamma,
		Theta:  theta,
		Vega:   vega,
		IVUsed: in.IV,
	}
	if !result.finite() {
		return GreeksResult{}, fmt.Errorf("%w: non-finite greeks for strike %v", ErrNumerical, in.Strike)
	}
	return result, nil
}

// expiryDayGreeks 到期日退化情形：delta 取内在价值方向，其余归零
func expiryDayGreeks(in GreeksInput) GreeksResult {
	var delta float64
	if in.OptionType == OptionTypeCall && in.Spot > in.Strike {
		delta = 1
	}
	if in.OptionType == OptionTypePut && in.Spot < in.Strike {
		delta = -1
	}
	return GreeksResult{Delta: delta, IVUsed: in.IV}
}

func (g GreeksResult) finite() bool {
	for _, v := range [...]float64{g.Delta, g.Gamma, g.Theta, g.Vega} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// normCDF 标准正态分布累积分布函数
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF 标准正态分布概率密度函数
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
