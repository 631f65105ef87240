package indicators

import "github.com/Alias1177/LevelBot/models"

// CalcMACD returns the MACD line, signal line and histogram at the latest
// bar. The signal line is an EMA over the full MACD history so its value does
// not depend on where the window is cut.
func CalcMACD(candles []models.Candle, fast, slow, signal int) (models.MACD, error) {
	need := slow + signal
	if len(candles) < need {
		return models.MACD{}, &InsufficientDataError{Indicator: "macd", Need: need, Have: len(candles)}
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signal)

	last := len(closes) - 1
	return models.MACD{
		Line:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}, nil
}
