package domain

// LiquidityProvider scores a candidate's tradability in [0,100]. The
// engine treats this as an injected port so a volume/open-interest
// backed implementation can replace the placeholder without touching
// scoring logic.
type LiquidityProvider interface {
	Score(candidate Candidate) float64
}

// StaticLiquidityProvider 占位实现：在接入真实成交量/持仓量数据前
// 对所有候选返回固定分数
type StaticLiquidityProvider struct {
	Value float64
}

// NewStaticLiquidityProvider returns the placeholder provider used
// until a market-data backed one lands.
func NewStaticLiquidityProvider(value float64) *StaticLiquidityProvider {
	return &StaticLiquidityProvider{Value: value}
}

func (p *StaticLiquidityProvider) Score(Candidate) float64 {
	if p.Value < 0 {
		return 0
	}
	if p.Value > 100 {
		return 100
	}
	return p.Value
}
