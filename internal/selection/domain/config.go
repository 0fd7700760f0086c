package domain

import (
	"errors"
	"fmt"
)

// EngineConfig groups every tunable knob of the selection engine. All
// values are fixed at construction; selection calls only read them, so
// the engine is safe for concurrent use.
type EngineConfig struct {
	// 行权价窗口半宽：ATM 两侧各取 HalfWidth 个行权价
	HalfWidth int `mapstructure:"half_width"`

	// IV 启发式参数
	BaseIV    float64 `mapstructure:"base_iv"`
	OTMStepIV float64 `mapstructure:"otm_step_iv"`
	ITMStepIV float64 `mapstructure:"itm_step_iv"`
	IVCeiling float64 `mapstructure:"iv_ceiling"`
	IVFloor   float64 `mapstructure:"iv_floor"`

	RiskFreeRate float64 `mapstructure:"risk_free_rate"`

	// Delta component: full credit inside [DeltaIdealLow, DeltaIdealHigh],
	// linear decay to zero at DeltaMin / DeltaMax.
	DeltaIdealLow  float64 `mapstructure:"delta_ideal_low"`
	DeltaIdealHigh float64 `mapstructure:"delta_ideal_high"`
	DeltaMin       float64 `mapstructure:"delta_min"`
	DeltaMax       float64 `mapstructure:"delta_max"`

	// Gamma component: zero at/below floor, full at/above target.
	GammaFloor  float64 `mapstructure:"gamma_floor"`
	GammaTarget float64 `mapstructure:"gamma_target"`

	// Theta component: full credit at zero decay, zero at |ThetaCeiling|
	// per calendar day and beyond.
	ThetaCeiling float64 `mapstructure:"theta_ceiling"`

	// Vega component: same band shape as delta.
	VegaIdealLow  float64 `mapstructure:"vega_ideal_low"`
	VegaIdealHigh float64 `mapstructure:"vega_ideal_high"`
	VegaMin       float64 `mapstructure:"vega_min"`
	VegaMax       float64 `mapstructure:"vega_max"`

	// ProximityBonus[i] is the additive bonus for |offset| == i.
	// Offsets past the end of the schedule earn nothing.
	ProximityBonus []float64 `mapstructure:"proximity_bonus"`
}

// DefaultEngineConfig 返回与生产一致的默认参数
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HalfWidth:      3,
		BaseIV:         0.16,
		OTMStepIV:      0.005,
		ITMStepIV:      0.0025,
		IVCeiling:      0.18,
		IVFloor:        0.15,
		RiskFreeRate:   0.065,
		DeltaIdealLow:  0.40,
		DeltaIdealHigh: 0.65,
		DeltaMin:       0.20,
		DeltaMax:       0.85,
		GammaFloor:     0.0005,
		GammaTarget:    0.0015,
		ThetaCeiling:   -40.0,
		VegaIdealLow:   5.0,
		VegaIdealHigh:  15.0,
		VegaMin:        1.0,
		VegaMax:        25.0,
		ProximityBonus: []float64{20, 15, 10, 5},
	}
}

// Validate 校验引擎配置
func (c EngineConfig) Validate() error {
	if c.HalfWidth < 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("half_width must be non-negative"))
	}
	if c.BaseIV <= 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("base_iv must be positive"))
	}
	if c.IVFloor <= 0 || c.IVCeiling < c.BaseIV || c.IVFloor > c.BaseIV {
		return errors.Join(ErrInvalidConfiguration,
			fmt.Errorf("iv bounds must satisfy 0 < floor (%v) <= base (%v) <= ceiling (%v)", c.IVFloor, c.BaseIV, c.IVCeiling))
	}
	if c.DeltaMin > c.DeltaIdealLow || c.DeltaIdealLow > c.DeltaIdealHigh || c.DeltaIdealHigh > c.DeltaMax {
		return errors.Join(ErrInvalidConfiguration, errors.New("delta band must be ordered min <= ideal_low <= ideal_high <= max"))
	}
	if c.GammaFloor < 0 || c.GammaTarget <= c.GammaFloor {
		return errors.Join(ErrInvalidConfiguration, errors.New("gamma_target must exceed gamma_floor"))
	}
	if c.ThetaCeiling >= 0 {
		return errors.Join(ErrInvalidConfiguration, errors.New("theta_ceiling must be negative"))
	}
	if c.VegaMin > c.VegaIdealLow || c.VegaIdealLow > c.VegaIdealHigh || c.VegaIdealHigh > c.VegaMax {
		return errors.Join(ErrInvalidConfiguration, errors.New("vega band must be ordered min <= ideal_low <= ideal_high <= max"))
	}
	return nil
}
