package indicators

import "github.com/Alias1177/LevelBot/models"

// Trend classifies direction from the close displacement over the last five
// bars, measured against ATR to ignore noise.
func Trend(candles []models.Candle, atr float64) string {
	if len(candles) < 6 {
		return "flat"
	}
	last := candles[len(candles)-1].Close
	ref := candles[len(candles)-5].Close
	switch {
	case last > ref+0.2*atr:
		return "up"
	case last < ref-0.2*atr:
		return "down"
	default:
		return "flat"
	}
}
