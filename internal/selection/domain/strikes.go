package domain

import (
	"errors"
	"math"
)

// ATMStrike rounds the spot to the nearest multiple of the strike
// interval, ties away from zero.
func ATMStrike(spotPrice, strikeInterval float64) float64 {
	return math.Round(spotPrice/strikeInterval) * strikeInterval
}

// GenerateStrikeRange builds the ascending window of 2*halfWidth+1
// strikes centered on the ATM strike.
func GenerateStrikeRange(spotPrice, strikeInterval float64, halfWidth int) ([]float64, error) {
	if spotPrice <= 0 {
		return nil, errors.Join(ErrInvalidConfiguration, errors.New("spot_price must be positive"))
	}
	if strikeInterval <= 0 {
		return nil, errors.Join(ErrInvalidConfiguration, errors.New("strike_interval must be positive"))
	}
	if halfWidth < 0 {
		return nil, errors.Join(ErrInvalidConfiguration, errors.New("half_width must be non-negative"))
	}

	atm := ATMStrike(spotPrice, strikeInterval)
	strikes := make([]float64, 0, 2*halfWidth+1)
	for k := -halfWidth; k <= halfWidth; k++ {
		strikes = append(strikes, atm+float64(k)*strikeInterval)
	}
	return strikes, nil
}
