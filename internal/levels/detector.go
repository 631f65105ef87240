package levels

import (
	"math"

	"github.com/Alias1177/LevelBot/models"
)

// Detector finds swing points in a bar series and clusters them into levels.
type Detector struct {
	Window       int     // bars on each side of a local extremum
	Tolerance    float64 // absolute clustering tolerance
	ToleranceATR float64 // tolerance as ATR multiple, overrides absolute when ATR is known
}

// DetectSwings returns local extrema: a bar is a swing high (low) when its
// high (low) is strictly beyond those of Window bars on both sides. A series
// shorter than 2×Window yields an empty result, never an error.
func (d Detector) DetectSwings(candles []models.Candle) []models.SwingPoint {
	if len(candles) < 2*d.Window {
		return nil
	}

	var swings []models.SwingPoint
	for i := d.Window; i < len(candles)-d.Window; i++ {
		isHigh, isLow := true, true
		for j := i - d.Window; j <= i+d.Window; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			swings = append(swings, models.SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].High,
				Kind:      models.SwingHigh,
			})
		}
		if isLow {
			swings = append(swings, models.SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].Low,
				Kind:      models.SwingLow,
			})
		}
	}
	return swings
}

// Cluster merges swing points into levels in chronological order. A point
// joins the nearest existing level of the same kind when its price is within
// tol of the centroid; when two levels are equally near, the one created
// first wins. Centroids and touch counts are recomputed on every merge; age
// is measured from the first member to lastIndex.
func (d Detector) Cluster(swings []models.SwingPoint, tol float64, lastIndex int) []models.Level {
	var clusters []*models.Level

	for _, sp := range swings {
		kind := models.LevelSupport
		if sp.Kind == models.SwingHigh {
			kind = models.LevelResistance
		}

		var best *models.Level
		bestDist := math.Inf(1)
		for _, lvl := range clusters {
			if lvl.Kind != kind {
				continue
			}
			dist := math.Abs(sp.Price - lvl.Price)
			if dist <= tol && dist < bestDist {
				best = lvl
				bestDist = dist
			}
		}

		if best == nil {
			clusters = append(clusters, &models.Level{
				Price:   sp.Price,
				Kind:    kind,
				Members: []models.SwingPoint{sp},
				Touches: 1,
			})
			continue
		}

		best.Members = append(best.Members, sp)
		best.Touches = len(best.Members)
		var sum float64
		for _, m := range best.Members {
			sum += m.Price
		}
		best.Price = sum / float64(len(best.Members))
	}

	out := make([]models.Level, 0, len(clusters))
	for _, lvl := range clusters {
		lvl.Age = lastIndex - lvl.FirstIndex()
		out = append(out, *lvl)
	}
	return out
}

// DetectLevels runs swing detection and clustering over one bar series.
// atr selects the ATR-relative tolerance when configured; pass 0 to force
// the absolute tolerance.
func (d Detector) DetectLevels(candles []models.Candle, atr float64) []models.Level {
	swings := d.DetectSwings(candles)
	if len(swings) == 0 {
		return nil
	}
	tol := d.Tolerance
	if d.ToleranceATR > 0 && atr > 0 {
		tol = atr * d.ToleranceATR
	}
	return d.Cluster(swings, tol, len(candles)-1)
}
