package risk

import (
	"fmt"
	"math"

	"github.com/Alias1177/LevelBot/models"
)

// DegenerateRiskError is returned when the stop distance is zero and the
// risk/reward ratio is undefined.
type DegenerateRiskError struct {
	Entry float64
}

func (e *DegenerateRiskError) Error() string {
	return fmt.Sprintf("degenerate risk: stop equals entry at %v", e.Entry)
}

// ComputeRR returns |target-entry| / |entry-stop|.
func ComputeRR(entry, stop, target float64) (float64, error) {
	if entry == stop {
		return 0, &DegenerateRiskError{Entry: entry}
	}
	return math.Abs(target-entry) / math.Abs(entry-stop), nil
}

// NearestOpposingLevel returns the closest level on the risk side of entry:
// below entry for LONG, above for SHORT. Ties go to the level closest in
// price to the entry, which the nearest-neighbor scan yields directly.
func NearestOpposingLevel(levels []models.Level, entry float64, dir models.Direction) (models.Level, bool) {
	var best models.Level
	bestDist := math.Inf(1)
	found := false
	for _, lvl := range levels {
		if dir == models.DirectionLong && lvl.Price >= entry {
			continue
		}
		if dir == models.DirectionShort && lvl.Price <= entry {
			continue
		}
		dist := math.Abs(entry - lvl.Price)
		if dist < bestDist {
			best = lvl
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// NextLevelInDirection returns the closest level ahead of entry in the trade
// direction: above entry for LONG, below for SHORT.
func NextLevelInDirection(levels []models.Level, entry float64, dir models.Direction) (models.Level, bool) {
	var best models.Level
	bestDist := math.Inf(1)
	found := false
	for _, lvl := range levels {
		if dir == models.DirectionLong && lvl.Price <= entry {
			continue
		}
		if dir == models.DirectionShort && lvl.Price >= entry {
			continue
		}
		dist := math.Abs(lvl.Price - entry)
		if dist < bestDist {
			best = lvl
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// StructuralTarget picks the next level in the trade direction, or falls back
// to a stop-distance multiple when no structure exists ahead.
func StructuralTarget(levels []models.Level, entry, stop float64, dir models.Direction, ratio float64) float64 {
	if next, ok := NextLevelInDirection(levels, entry, dir); ok {
		return next.Price
	}
	stopDist := math.Abs(entry - stop)
	if dir == models.DirectionLong {
		return entry + stopDist*ratio
	}
	return entry - stopDist*ratio
}
