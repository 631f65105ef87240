package indicators

import "github.com/Alias1177/LevelBot/models"

// EMA returns the exponential moving average of closes, seeded with the SMA
// of the first period values.
func EMA(candles []models.Candle, period int) (float64, error) {
	if len(candles) < period {
		return 0, &InsufficientDataError{Indicator: "ema", Need: period, Have: len(candles)}
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += candles[i].Close
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		ema = (candles[i].Close-ema)*multiplier + ema
	}
	return ema, nil
}

// emaSeries computes a running EMA over values, seeded with the first value.
// Used for MACD where the full history of the line is needed.
func emaSeries(values []float64, period int) []float64 {
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
