package trendlines

import (
	"fmt"
	"math"

	"github.com/Alias1177/LevelBot/models"
)

// NoTrendlineError is returned when fewer than two swing points of a kind
// exist in the window. Handled internally by the scenario evaluator, which
// falls back to level-only evaluation.
type NoTrendlineError struct {
	Timeframe string
	Kind      models.SwingKind
}

func (e *NoTrendlineError) Error() string {
	return fmt.Sprintf("no trendline: %s %s: need at least 2 swing points", e.Timeframe, e.Kind)
}

// Fitter fits boundary lines through swing points of one kind.
type Fitter struct {
	MinSlope  float64 // minimum slope per bar, relative to price
	Tolerance float64 // relative distance that still counts as touching
	Touches   int     // minimum points on an accepted line
}

// Fit finds a trendline through swing points of the given kind: descending
// through highs, ascending through lows. Every intermediate swing point of
// the same kind must stay on the correct side of the line within Tolerance,
// otherwise the candidate is discarded — the line must remain a valid
// boundary. Among valid candidates the one with the most touches wins; ties
// go to the most recent anchor pair. lastIndex is the index of the latest bar
// of the series the swings came from; projections are anchored to it.
func (f Fitter) Fit(timeframe string, swings []models.SwingPoint, kind models.SwingKind, lastIndex int) (*models.Trendline, error) {
	points := make([]models.SwingPoint, 0, len(swings))
	for _, sp := range swings {
		if sp.Kind == kind {
			points = append(points, sp)
		}
	}
	if len(points) < 2 {
		return nil, &NoTrendlineError{Timeframe: timeframe, Kind: kind}
	}

	var best *models.Trendline
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			a, b := points[i], points[j]
			slope := (b.Price - a.Price) / float64(b.Index-a.Index)

			// direction constraint: resistance lines fall, support lines rise
			relSlope := slope / a.Price
			if kind == models.SwingHigh && relSlope >= -f.MinSlope {
				continue
			}
			if kind == models.SwingLow && relSlope <= f.MinSlope {
				continue
			}

			members := []models.SwingPoint{a}
			valid := true
			for k := i + 1; k < j; k++ {
				p := points[k]
				projected := a.Price + slope*float64(p.Index-a.Index)
				diff := (p.Price - projected) / projected
				if kind == models.SwingHigh && diff > f.Tolerance {
					valid = false // a high pokes above the resistance line
					break
				}
				if kind == models.SwingLow && diff < -f.Tolerance {
					valid = false // a low breaks below the support line
					break
				}
				if math.Abs(diff) < f.Tolerance {
					members = append(members, p)
				}
			}
			if !valid {
				continue
			}
			members = append(members, b)
			if len(members) < f.Touches {
				continue
			}

			if best == nil || len(members) > len(best.Points) ||
				(len(members) == len(best.Points) && b.Index >= best.Points[len(best.Points)-1].Index) {
				direction := models.LineDown
				if slope > 0 {
					direction = models.LineUp
				}
				best = &models.Trendline{
					Timeframe: timeframe,
					Kind:      kind,
					Points:    members,
					Slope:     slope,
					Intercept: a.Price - slope*float64(a.Index),
					Direction: direction,
					Touches:   len(members),
					LastIndex: lastIndex,
				}
			}
		}
	}

	if best == nil {
		return nil, &NoTrendlineError{Timeframe: timeframe, Kind: kind}
	}
	return best, nil
}

// Breakouts reports lines whose projected value at their latest bar has been
// crossed by the close in the candidate direction: a long breakout closes
// above an ascending line, a short breakout closes below a descending line.
// The breakout price is the projected line value, not the raw close.
func Breakouts(lines []*models.Trendline, close float64, dir models.Direction) []models.Breakout {
	var out []models.Breakout
	for _, line := range lines {
		if line == nil {
			continue
		}
		projected := line.Projection()
		switch {
		case dir == models.DirectionLong && line.Direction == models.LineUp && close > projected:
			out = append(out, models.Breakout{
				Timeframe: line.Timeframe,
				Line:      line,
				Price:     projected,
				Direction: models.DirectionLong,
			})
		case dir == models.DirectionShort && line.Direction == models.LineDown && close < projected:
			out = append(out, models.Breakout{
				Timeframe: line.Timeframe,
				Line:      line,
				Price:     projected,
				Direction: models.DirectionShort,
			})
		}
	}
	return out
}
