package indicators

import (
	"math"

	"github.com/Alias1177/LevelBot/models"
)

// Stats describes the latest candle against the recent volume average.
// spikeMultiplier is the rolling-average multiple that counts as a spike.
func Stats(candles []models.Candle, atr, spikeMultiplier float64) models.CandleStats {
	last := candles[len(candles)-1]
	body := math.Abs(last.Close - last.Open)
	upper := last.High - math.Max(last.Open, last.Close)
	lower := math.Min(last.Open, last.Close) - last.Low

	window := candles
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	var volSum float64
	for _, c := range window {
		volSum += c.Volume
	}
	avgVol := volSum / float64(len(window))

	return models.CandleStats{
		Body:        body,
		UpperWick:   upper,
		LowerWick:   lower,
		Volume:      last.Volume,
		VolumeSpike: avgVol > 0 && last.Volume > avgVol*spikeMultiplier,
		StrongBody:  body > atr*0.6,
		Doji:        body < atr*0.1 && upper > body && lower > body,
		WeakVolume:  avgVol > 0 && last.Volume < avgVol*0.8,
	}
}
