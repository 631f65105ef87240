package indicators

import (
	"math"
	"sort"

	"github.com/Alias1177/LevelBot/models"
)

// Profile builds a volume profile from the candle midpoints. Pass binSize 0
// to adapt the bucket width to current price and volatility. POC is the
// bucket with maximum accumulated volume; low-volume nodes are buckets below
// half the average bucket volume.
func Profile(candles []models.Candle, binSize float64) (models.VolumeProfile, error) {
	if len(candles) < 3 {
		return models.VolumeProfile{}, &InsufficientDataError{Indicator: "volume_profile", Need: 3, Have: len(candles)}
	}

	if binSize <= 0 {
		priceNow := candles[len(candles)-1].Close
		var rangeSum float64
		for _, c := range candles {
			rangeSum += c.High - c.Low
		}
		avgRange := rangeSum / float64(len(candles))
		binSize = math.Max(priceNow*0.001, avgRange*0.2)
		if binSize <= 0 {
			binSize = 1e-6
		}
	}

	volByBin := make(map[float64]float64)
	for _, c := range candles {
		mid := (c.High + c.Low) / 2
		bin := math.Round(mid/binSize) * binSize
		volByBin[bin] += c.Volume
	}

	bins := make([]models.VolumeBin, 0, len(volByBin))
	for price, vol := range volByBin {
		bins = append(bins, models.VolumeBin{Price: price, Volume: vol})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Price < bins[j].Price })

	// POC: highest volume, lower price wins a tie so reruns are identical
	poc := bins[0]
	var total float64
	for _, b := range bins {
		total += b.Volume
		if b.Volume > poc.Volume {
			poc = b
		}
	}
	avg := total / float64(len(bins))

	var lowNodes []float64
	for _, b := range bins {
		if b.Volume < avg*0.5 {
			lowNodes = append(lowNodes, b.Price)
		}
	}

	return models.VolumeProfile{
		BinSize:        binSize,
		Bins:           bins,
		POC:            poc.Price,
		LowVolumeNodes: lowNodes,
	}, nil
}
