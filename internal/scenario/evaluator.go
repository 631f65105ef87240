package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/LevelBot/internal/config"
	"github.com/Alias1177/LevelBot/internal/filters"
	"github.com/Alias1177/LevelBot/internal/indicators"
	"github.com/Alias1177/LevelBot/internal/levels"
	"github.com/Alias1177/LevelBot/internal/risk"
	"github.com/Alias1177/LevelBot/internal/trendlines"
	"github.com/Alias1177/LevelBot/models"
)

// Evaluation states, strictly sequential. A missing precondition short-
// circuits to a NO_SETUP scenario instead of an error: absence of structure
// is a valid outcome.
type state string

const (
	stateDataCollected      state = "DATA_COLLECTED"
	stateLevelsDetected     state = "LEVELS_DETECTED"
	stateTrendlinesDetected state = "TRENDLINES_DETECTED"
	stateContextEvaluated   state = "CONTEXT_EVALUATED"
	stateScored             state = "SCORED"
)

// Structure holds everything detected from the bar series before scoring:
// the deterministic output of the first three pipeline states.
type Structure struct {
	Symbol    string
	Close     float64
	ATRFast   float64
	Levels    []models.Level
	Lines     []*models.Trendline
	Snapshots []models.IndicatorSnapshot // ordered low to high timeframe, first is primary
}

// Evaluator runs the full pipeline for one symbol. Each call owns its bars,
// levels, trendlines, snapshots and resulting scenario — nothing is shared
// across runs or symbols.
type Evaluator struct {
	cfg      config.Config
	context  *filters.ContextEvaluator
	detector levels.Detector
	fitter   trendlines.Fitter
	logger   zerolog.Logger
}

func New(cfg config.Config) *Evaluator {
	return &Evaluator{
		cfg:     cfg,
		context: filters.New(cfg),
		detector: levels.Detector{
			Window:       cfg.SwingWindow,
			Tolerance:    cfg.ClusterTolerance,
			ToleranceATR: cfg.ClusterToleranceATR,
		},
		fitter: trendlines.Fitter{
			MinSlope:  cfg.TrendlineMinSlope,
			Tolerance: cfg.TrendlineTolerance,
			Touches:   cfg.TrendlineTouches,
		},
		logger: log.With().Str("component", "scenario").Logger(),
	}
}

// Evaluate walks the state machine over the bar series per timeframe.
// Insufficient data on any present timeframe aborts the run with an error;
// everything downstream of data collection terminates in a Scenario.
func (e *Evaluator) Evaluate(symbol string, bars map[string][]models.Candle) (*models.Scenario, error) {
	current := stateDataCollected

	params := indicators.Params{
		ATRPeriod:       e.cfg.ATRPeriod,
		EMAPeriod:       e.cfg.EMAPeriod,
		MACDFast:        e.cfg.MACDFast,
		MACDSlow:        e.cfg.MACDSlow,
		MACDSignal:      e.cfg.MACDSignal,
		SpikeMultiplier: e.cfg.VolumeSpikeMultiplier,
	}

	primary := e.cfg.Primary()
	primaryBars, ok := bars[primary]
	if !ok || len(primaryBars) == 0 {
		return nil, fmt.Errorf("evaluate %s: no bars for primary timeframe %s", symbol, primary)
	}

	var snapshots []models.IndicatorSnapshot
	for _, tf := range e.cfg.Timeframes {
		tfBars, ok := bars[tf]
		if !ok {
			continue // higher timeframe not supplied, alignment handles the gap
		}
		snap, err := indicators.Snapshot(tf, tfBars, params)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
		}
		snapshots = append(snapshots, snap)
	}

	atrFast, err := indicators.ATR(primaryBars, e.cfg.ATRFastPeriod)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
	}

	st := Structure{
		Symbol:    symbol,
		Close:     primaryBars[len(primaryBars)-1].Close,
		ATRFast:   atrFast,
		Snapshots: snapshots,
	}

	current = stateLevelsDetected
	st.Levels = e.detector.DetectLevels(primaryBars, snapshots[0].ATR)

	current = stateTrendlinesDetected
	for _, tf := range e.cfg.Timeframes {
		tfBars, ok := bars[tf]
		if !ok {
			continue
		}
		window := tfBars
		if len(window) > e.cfg.TrendlineLookback {
			window = window[len(window)-e.cfg.TrendlineLookback:]
		}
		swings := e.detector.DetectSwings(window)
		for _, kind := range []models.SwingKind{models.SwingLow, models.SwingHigh} {
			line, err := e.fitter.Fit(tf, swings, kind, len(window)-1)
			if err != nil {
				var noLine *trendlines.NoTrendlineError
				if errors.As(err, &noLine) {
					continue // level-only evaluation for this timeframe
				}
				return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
			}
			st.Lines = append(st.Lines, line)
		}
	}

	e.logger.Debug().
		Str("symbol", symbol).
		Str("state", string(current)).
		Int("levels", len(st.Levels)).
		Int("trendlines", len(st.Lines)).
		Msg("structure detected")

	return e.Score(st), nil
}

// Score runs the CONTEXT_EVALUATED and SCORED states over detected
// structure and finalizes the scenario.
func (e *Evaluator) Score(st Structure) *models.Scenario {
	primarySnap := st.Snapshots[0]

	if len(st.Levels) == 0 {
		return e.terminal(st, models.StatusNoSetup, models.Reason{
			Check: models.CheckStructure,
			Note:  "no structural levels detected",
		})
	}

	dir, governing, levelBreak, ok := e.direction(st)
	if !ok {
		return e.terminal(st, models.StatusNoSetup, models.Reason{
			Check: models.CheckStructure,
			Note:  "no directional structure at current price",
		})
	}

	// Selection policy: a trendline breakout beats a plain level breakout;
	// across timeframes the one nearest to the current close wins.
	var verdict models.ContextVerdict
	entry := st.Close
	isBreakout := levelBreak

	breakouts := trendlines.Breakouts(st.Lines, st.Close, dir)
	switch {
	case len(breakouts) > 0:
		chosen := breakouts[0]
		for _, b := range breakouts[1:] {
			if math.Abs(b.Price-st.Close) < math.Abs(chosen.Price-st.Close) {
				chosen = b
			}
		}
		entry = chosen.Price
		isBreakout = true
		verdict.Append(models.Reason{
			Check:     models.CheckTrendlineBreakout,
			Timeframe: chosen.Timeframe,
			Confirmed: true,
			Note:      "trendline breakout",
		})
	case levelBreak:
		entry = governing.Price
		verdict.Append(models.Reason{
			Check:     models.CheckLevelBreakout,
			Confirmed: true,
			Note:      "level breakout",
		})
	default:
		verdict.Append(models.Reason{
			Check:     models.CheckStructure,
			Confirmed: true,
			Note:      "bounce from level",
		})
	}

	context := e.context.Evaluate(filters.Candidate{
		Direction: dir,
		Close:     st.Close,
		ATR:       primarySnap.ATR,
		Governing: governing,
		Breakout:  isBreakout,
		Snapshots: st.Snapshots,
	})
	for _, r := range context.Reasons {
		verdict.Append(r)
	}
	verdict.Aligned = context.Aligned
	verdict.Overheated = context.Overheated
	verdict.VolumeSpike = context.VolumeSpike

	scenario := &models.Scenario{
		Symbol:     st.Symbol,
		Direction:  dir,
		Entry:      entry,
		ATR:        primarySnap.ATR,
		MarketMode: e.marketMode(st, verdict.Overheated),
		Reasons:    verdict.Reasons,
	}

	stop, hasStop := risk.NearestOpposingLevel(st.Levels, entry, dir)
	if !hasStop {
		scenario.Status = models.StatusInvalid
		scenario.Reasons = appendReason(scenario.Reasons, models.Reason{
			Check: models.CheckStructure,
			Note:  "no opposing level to bound risk",
		})
		scenario.Confidence = verdict.Confidence()
		return scenario
	}
	scenario.Stop = stop.Price
	scenario.Target = risk.StructuralTarget(st.Levels, entry, stop.Price, dir, e.cfg.TargetRatio)

	rr, err := risk.ComputeRR(entry, stop.Price, scenario.Target)
	if err != nil {
		scenario.Status = models.StatusInvalid
		scenario.Reasons = appendReason(scenario.Reasons, models.Reason{
			Check: models.CheckStructure,
			Note:  "risk/reward undefined: stop equals entry",
		})
		scenario.Confidence = verdict.Confidence()
		return scenario
	}
	scenario.RiskReward = rr

	scenario.Confidence = verdict.Confidence()
	switch {
	case scenario.Confidence >= e.cfg.StrongThreshold && !verdict.Overheated:
		scenario.Status = models.StatusValidStrong
	case scenario.Confidence >= e.cfg.WeakThreshold:
		// overextension caps an otherwise strong setup at VALID_WEAK
		scenario.Status = models.StatusValidWeak
	default:
		scenario.Status = models.StatusInvalid
	}
	return scenario
}

// direction derives the candidate side from the strongest levels: a close
// beyond the dominant cluster is a breakout, a long rejection wick near a
// level is a bounce. No qualifying structure means no setup.
func (e *Evaluator) direction(st Structure) (models.Direction, models.Level, bool, bool) {
	primarySnap := st.Snapshots[0]
	resistance, hasRes := dominantLevel(st.Levels, models.LevelResistance, st.Close)
	support, hasSup := dominantLevel(st.Levels, models.LevelSupport, st.Close)

	if hasRes && st.Close > resistance.Price {
		return models.DirectionLong, resistance, true, true
	}
	if hasSup && st.Close < support.Price {
		return models.DirectionShort, support, true, true
	}

	higherTrend := primarySnap.Trend
	if len(st.Snapshots) > 1 {
		higherTrend = st.Snapshots[1].Trend
	}
	stats := primarySnap.Stats

	if hasSup && stats.LowerWick > stats.Body*1.5 && st.Close > support.Price &&
		st.Close-support.Price < 1.8*primarySnap.ATR && higherTrend != "down" {
		return models.DirectionLong, support, false, true
	}
	if hasRes && stats.UpperWick > stats.Body*1.5 && st.Close < resistance.Price &&
		resistance.Price-st.Close < 1.8*primarySnap.ATR && higherTrend != "up" {
		return models.DirectionShort, resistance, false, true
	}

	return "", models.Level{}, false, false
}

// dominantLevel picks the most-touched level of a kind; equal touch counts go
// to the level nearest the current close.
func dominantLevel(lvls []models.Level, kind models.LevelKind, close float64) (models.Level, bool) {
	var best models.Level
	found := false
	for _, lvl := range lvls {
		if lvl.Kind != kind {
			continue
		}
		if !found || lvl.Touches > best.Touches ||
			(lvl.Touches == best.Touches && math.Abs(lvl.Price-close) < math.Abs(best.Price-close)) {
			best = lvl
			found = true
		}
	}
	return best, found
}

// marketMode classifies the phase from the primary trend, fast/slow ATR and
// the breakout bar volume.
func (e *Evaluator) marketMode(st Structure, overheated bool) models.MarketMode {
	if overheated {
		return models.ModeOverheated
	}
	primarySnap := st.Snapshots[0]
	atrSlow := primarySnap.ATR
	switch {
	case primarySnap.Trend != "flat" && primarySnap.Stats.VolumeSpike:
		return models.ModeTrend
	case primarySnap.Trend == "flat" && st.ATRFast < atrSlow*0.6:
		return models.ModeRange
	case atrSlow > 0 && st.ATRFast > atrSlow*1.8:
		return models.ModeImpulse
	default:
		return models.ModeNeutral
	}
}

// terminal builds a NO_SETUP scenario that still carries mode, ATR and the
// explanatory reason.
func (e *Evaluator) terminal(st Structure, status models.Status, reason models.Reason) *models.Scenario {
	return &models.Scenario{
		Symbol:     st.Symbol,
		Status:     status,
		ATR:        st.Snapshots[0].ATR,
		MarketMode: e.marketMode(st, false),
		Reasons:    []models.Reason{reason},
	}
}

func appendReason(reasons []models.Reason, r models.Reason) []models.Reason {
	for _, existing := range reasons {
		if existing.Check == r.Check && existing.Timeframe == r.Timeframe {
			return reasons
		}
	}
	return append(reasons, r)
}
