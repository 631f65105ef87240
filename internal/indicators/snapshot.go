package indicators

import (
	"fmt"

	"github.com/Alias1177/LevelBot/models"
)

// Params are the periods and thresholds one snapshot is computed with.
type Params struct {
	ATRPeriod       int
	EMAPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	SpikeMultiplier float64
}

// Snapshot computes every indicator for one timeframe. Pure function of the
// bar series; returns InsufficientDataError when any requested period cannot
// be satisfied.
func Snapshot(timeframe string, candles []models.Candle, p Params) (models.IndicatorSnapshot, error) {
	var snap models.IndicatorSnapshot

	atr, err := ATR(candles, p.ATRPeriod)
	if err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", timeframe, err)
	}
	ema, err := EMA(candles, p.EMAPeriod)
	if err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", timeframe, err)
	}
	macd, err := CalcMACD(candles, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", timeframe, err)
	}
	profile, err := Profile(candles, 0)
	if err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", timeframe, err)
	}

	return models.IndicatorSnapshot{
		Timeframe: timeframe,
		ATR:       atr,
		EMA:       ema,
		MACD:      macd,
		Trend:     Trend(candles, atr),
		Close:     candles[len(candles)-1].Close,
		Profile:   profile,
		Stats:     Stats(candles, atr, p.SpikeMultiplier),
	}, nil
}
