package indicators

import (
	"math"

	"github.com/Alias1177/LevelBot/models"
)

// ATR returns the average true range over the last period bars.
func ATR(candles []models.Candle, period int) (float64, error) {
	if len(candles) < period+1 {
		return 0, &InsufficientDataError{Indicator: "atr", Need: period + 1, Have: len(candles)}
	}

	trueRanges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. Abs(Current High - Previous Close)
		// 3. Abs(Current Low - Previous Close)
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)

		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	var sum float64
	for i := len(trueRanges) - period; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(period), nil
}
