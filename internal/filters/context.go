package filters

import (
	"fmt"
	"math"

	"github.com/Alias1177/LevelBot/internal/config"
	"github.com/Alias1177/LevelBot/models"
)

// Candidate is a directional setup awaiting hygiene checks.
type Candidate struct {
	Direction models.Direction
	Close     float64
	ATR       float64
	Governing models.Level // the level whose break or bounce produced the candidate
	Breakout  bool
	Snapshots []models.IndicatorSnapshot // ordered low to high timeframe, first is primary
}

// ContextEvaluator applies the hygiene filters: multi-timeframe alignment,
// overextension, volume-profile proximity and volume spike. It never rejects
// outright — every check lands in the verdict as a confirmed or unconfirmed
// reason so the scenario evaluator can still finalize an INVALID or NO_SETUP
// result.
type ContextEvaluator struct {
	cfg config.Config
}

func New(cfg config.Config) *ContextEvaluator {
	return &ContextEvaluator{cfg: cfg}
}

// Evaluate runs every check and returns the verdict. Borderline input never
// causes an error; a missing confirmation is recorded, not thrown.
func (e *ContextEvaluator) Evaluate(c Candidate) models.ContextVerdict {
	var verdict models.ContextVerdict

	e.checkAlignment(c, &verdict)
	e.checkOverextension(c, &verdict)
	e.checkVolumeProfile(c, &verdict)
	e.checkVolumeSpike(c, &verdict)
	e.checkMACD(c, &verdict)
	e.checkLevelAge(c, &verdict)

	return verdict
}

// checkAlignment walks the (timeframe, snapshot) table uniformly. Each
// timeframe contributes its trend direction and the close position against
// EMA, weighted by its position so higher timeframes dominate. Misalignment
// downgrades the candidate, it does not reject it.
func (e *ContextEvaluator) checkAlignment(c Candidate, v *models.ContextVerdict) {
	if len(c.Snapshots) < 2 {
		v.Append(models.Reason{
			Check:     models.CheckMTFAlignment,
			Confirmed: false,
			Weight:    e.cfg.Weights.MTFAlignment,
			Note:      "no higher timeframe data",
		})
		return
	}

	wantTrend := "up"
	if c.Direction == models.DirectionShort {
		wantTrend = "down"
	}

	var score, max float64
	for pos, snap := range c.Snapshots[1:] {
		weight := float64(pos + 2) // primary is excluded; higher frames weigh more
		max += weight * 2

		if snap.Trend == wantTrend {
			score += weight
		} else if snap.Trend != "flat" {
			score -= weight
		}
		aboveEMA := snap.Close > snap.EMA
		if (c.Direction == models.DirectionLong && aboveEMA) ||
			(c.Direction == models.DirectionShort && !aboveEMA) {
			score += weight
		} else {
			score -= weight
		}
	}

	aligned := max > 0 && score/max > 0.3
	v.Aligned = aligned
	note := "higher timeframes agree"
	if !aligned {
		note = "higher timeframes do not confirm"
	}
	v.Append(models.Reason{
		Check:     models.CheckMTFAlignment,
		Confirmed: aligned,
		Weight:    e.cfg.Weights.MTFAlignment,
		Note:      note,
	})
}

// checkOverextension flags candidates whose price has run too far from the
// governing level to evaluate sanely.
func (e *ContextEvaluator) checkOverextension(c Candidate, v *models.ContextVerdict) {
	if c.ATR <= 0 {
		return
	}
	dist := math.Abs(c.Close - c.Governing.Price)
	if dist > e.cfg.OverextensionATR*c.ATR {
		v.Overheated = true
		v.Append(models.Reason{
			Check:     models.CheckOverextension,
			Confirmed: false,
			Note:      fmt.Sprintf("overheated: %.2f ATR from level", dist/c.ATR),
		})
	}
}

// checkVolumeProfile confirms proximity to the point of control, or — after a
// breakout — escape into a low-volume node where continuation meets little
// resistance.
func (e *ContextEvaluator) checkVolumeProfile(c Candidate, v *models.ContextVerdict) {
	if c.ATR <= 0 || len(c.Snapshots) == 0 {
		return
	}
	profile := c.Snapshots[0].Profile
	tolerance := e.cfg.POCProximityATR * c.ATR

	if math.Abs(c.Close-profile.POC) < tolerance {
		v.Append(models.Reason{
			Check:     models.CheckPOCProximity,
			Confirmed: true,
			Weight:    e.cfg.Weights.POCProximity,
			Note:      "near point of control",
		})
		return
	}
	if !c.Breakout {
		return
	}
	for _, node := range profile.LowVolumeNodes {
		if math.Abs(c.Close-node) < tolerance {
			v.Append(models.Reason{
				Check:     models.CheckLowVolumeNode,
				Confirmed: true,
				Weight:    e.cfg.Weights.LowVolumeNode,
				Note:      "inside low-volume node after breakout",
			})
			return
		}
	}
}

// checkVolumeSpike records the spike either way: its absence is part of the
// verdict, not a silent omission.
func (e *ContextEvaluator) checkVolumeSpike(c Candidate, v *models.ContextVerdict) {
	if len(c.Snapshots) == 0 {
		return
	}
	spike := c.Snapshots[0].Stats.VolumeSpike
	v.VolumeSpike = spike
	note := "volume spike on breakout bar"
	if !spike {
		note = "no volume spike"
	}
	v.Append(models.Reason{
		Check:     models.CheckVolumeSpike,
		Confirmed: spike,
		Weight:    e.cfg.Weights.VolumeSpike,
		Note:      note,
	})
}

// checkMACD uses the confirmation timeframe (the one above primary when
// present).
func (e *ContextEvaluator) checkMACD(c Candidate, v *models.ContextVerdict) {
	if len(c.Snapshots) == 0 {
		return
	}
	snap := c.Snapshots[0]
	if len(c.Snapshots) > 1 {
		snap = c.Snapshots[1]
	}

	confirmed := false
	if c.Direction == models.DirectionLong {
		confirmed = snap.MACD.Line > snap.MACD.Signal && snap.MACD.Histogram > 0
	} else {
		confirmed = snap.MACD.Line < snap.MACD.Signal && snap.MACD.Histogram < 0
	}
	note := "MACD confirms"
	if !confirmed {
		note = "MACD does not confirm"
	}
	v.Append(models.Reason{
		Check:     models.CheckMACD,
		Timeframe: snap.Timeframe,
		Confirmed: confirmed,
		Weight:    e.cfg.Weights.MACD,
		Note:      note,
	})
}

// checkLevelAge rewards fresh structure; very old levels are noted but carry
// no weight either way.
func (e *ContextEvaluator) checkLevelAge(c Candidate, v *models.ContextVerdict) {
	switch {
	case c.Governing.Age <= e.cfg.FreshLevelAge:
		v.Append(models.Reason{
			Check:     models.CheckLevelAge,
			Confirmed: true,
			Weight:    e.cfg.Weights.FreshLevel,
			Note:      "fresh level",
		})
	case c.Governing.Age > e.cfg.StaleLevelAge:
		v.Append(models.Reason{
			Check:     models.CheckLevelAge,
			Confirmed: false,
			Note:      "very old level",
		})
	}
}
