package models

import (
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}

// SwingKind marks a swing point as a local high or low
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// LevelKind classifies a clustered level relative to price
type LevelKind string

const (
	LevelSupport    LevelKind = "SUPPORT"
	LevelResistance LevelKind = "RESISTANCE"
)

// Direction of a candidate scenario
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// LineDirection is the sign of a trendline slope
type LineDirection string

const (
	LineUp   LineDirection = "UP"
	LineDown LineDirection = "DOWN"
)

// Status is the terminal classification of a scenario
type Status string

const (
	StatusValidStrong Status = "VALID_STRONG"
	StatusValidWeak   Status = "VALID_WEAK"
	StatusInvalid     Status = "INVALID"
	StatusNoSetup     Status = "NO_SETUP"
)

// MarketMode is the qualitative market phase
type MarketMode string

const (
	ModeTrend      MarketMode = "trend"
	ModeRange      MarketMode = "range"
	ModeImpulse    MarketMode = "impulse"
	ModeOverheated MarketMode = "overheated"
	ModeNeutral    MarketMode = "neutral"
)

// CheckKind tags a confirmation check performed by the context evaluator
type CheckKind string

const (
	CheckTrendlineBreakout CheckKind = "TRENDLINE_BREAKOUT"
	CheckLevelBreakout     CheckKind = "LEVEL_BREAKOUT"
	CheckMTFAlignment      CheckKind = "MTF_ALIGNMENT"
	CheckPOCProximity      CheckKind = "POC_PROXIMITY"
	CheckLowVolumeNode     CheckKind = "LOW_VOLUME_NODE"
	CheckVolumeSpike       CheckKind = "VOLUME_SPIKE"
	CheckOverextension     CheckKind = "OVEREXTENSION"
	CheckLevelAge          CheckKind = "LEVEL_AGE"
	CheckMACD              CheckKind = "MACD"
	CheckStructure         CheckKind = "STRUCTURE"
)

// SwingPoint is a local price extremum in a bar series
type SwingPoint struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Kind      SwingKind `json:"kind"`
}

// Level is a clustered price zone built from nearby swing points of one kind.
// Price is the centroid of all member swing points and is recomputed whenever
// membership changes.
type Level struct {
	Price   float64      `json:"price"`
	Kind    LevelKind    `json:"kind"`
	Members []SwingPoint `json:"members"`
	Age     int          `json:"age"`     // bars since the first member
	Touches int          `json:"touches"` // member count
}

// FirstIndex returns the bar index of the earliest member swing point.
func (l *Level) FirstIndex() int {
	first := l.Members[0].Index
	for _, m := range l.Members[1:] {
		if m.Index < first {
			first = m.Index
		}
	}
	return first
}

// Trendline is a fitted line through swing points of one kind on one
// timeframe. Slope and intercept are in bar-index space.
type Trendline struct {
	Timeframe string        `json:"timeframe"`
	Kind      SwingKind     `json:"kind"`
	Points    []SwingPoint  `json:"points"`
	Slope     float64       `json:"slope"`
	Intercept float64       `json:"intercept"`
	Direction LineDirection `json:"direction"`
	Touches   int           `json:"touches"`
	LastIndex int           `json:"last_index"` // latest bar index of the fitted series
}

// Projection is the line's value at the latest bar of its own series.
func (t *Trendline) Projection() float64 {
	return t.ValueAt(t.LastIndex)
}

// ValueAt projects the trendline price at the given bar index.
func (t *Trendline) ValueAt(index int) float64 {
	return t.Intercept + t.Slope*float64(index)
}

// Breakout is a detected crossing of a trendline projection or a level.
// Exactly one of Line or Level is set. Price is the structural value that was
// crossed (projected line value or level centroid), not the raw close.
type Breakout struct {
	Timeframe string     `json:"timeframe"`
	Line      *Trendline `json:"line,omitempty"`
	Level     *Level     `json:"level,omitempty"`
	Price     float64    `json:"price"`
	Direction Direction  `json:"direction"`
}

// MACD holds the MACD line, signal line and histogram at the latest bar
type MACD struct {
	Line      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// VolumeBin is one price bucket of a volume profile
type VolumeBin struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// VolumeProfile is the volume distribution over a lookback window.
// Bins are ordered by price ascending.
type VolumeProfile struct {
	BinSize        float64     `json:"bin_size"`
	Bins           []VolumeBin `json:"bins"`
	POC            float64     `json:"poc"` // bucket with maximum accumulated volume
	LowVolumeNodes []float64   `json:"low_volume_nodes"`
}

// CandleStats describes the shape of the latest candle against recent volume
type CandleStats struct {
	Body        float64 `json:"body"`
	UpperWick   float64 `json:"upper_wick"`
	LowerWick   float64 `json:"lower_wick"`
	Volume      float64 `json:"volume"`
	VolumeSpike bool    `json:"volume_spike"`
	StrongBody  bool    `json:"strong_body"`
	Doji        bool    `json:"doji"`
	WeakVolume  bool    `json:"weak_volume"`
}

// IndicatorSnapshot holds all indicator values for one timeframe.
// Recomputed fresh for every evaluation run, never persisted.
type IndicatorSnapshot struct {
	Timeframe string        `json:"timeframe"`
	ATR       float64       `json:"atr"`
	EMA       float64       `json:"ema"`
	MACD      MACD          `json:"macd"`
	Trend     string        `json:"trend"` // up, down, flat
	Close     float64       `json:"close"`
	Profile   VolumeProfile `json:"volume_profile"`
	Stats     CandleStats   `json:"candle_stats"`
}

// Reason is one structured confirmation or rejection produced by a check.
// String rendering is a presentation concern (internal/render).
type Reason struct {
	Check     CheckKind `json:"check"`
	Timeframe string    `json:"timeframe,omitempty"`
	Confirmed bool      `json:"confirmed"`
	Weight    float64   `json:"weight"`
	Note      string    `json:"note,omitempty"`
}

// ContextVerdict is the hygiene-filter output consumed by the scenario
// evaluator. Reasons are append-only and deduplicated by (Check, Timeframe);
// the first occurrence wins.
type ContextVerdict struct {
	Aligned     bool     `json:"aligned"`
	Overheated  bool     `json:"overheated"`
	VolumeSpike bool     `json:"volume_spike"`
	Reasons     []Reason `json:"reasons"`
}

// Append adds a reason unless one with the same check and timeframe is
// already present.
func (v *ContextVerdict) Append(r Reason) {
	for _, existing := range v.Reasons {
		if existing.Check == r.Check && existing.Timeframe == r.Timeframe {
			return
		}
	}
	v.Reasons = append(v.Reasons, r)
}

// Confidence sums the weights of all confirmed reasons.
func (v *ContextVerdict) Confidence() float64 {
	var score float64
	for _, r := range v.Reasons {
		if r.Confirmed {
			score += r.Weight
		}
	}
	return score
}

// Scenario is the final artifact of one evaluation run for one symbol.
// Immutable after the evaluator returns it.
type Scenario struct {
	RunID      string     `json:"run_id"`
	Symbol     string     `json:"symbol"`
	Status     Status     `json:"status"`
	Direction  Direction  `json:"direction,omitempty"`
	Entry      float64    `json:"entry,omitempty"`
	Stop       float64    `json:"stop,omitempty"`
	Target     float64    `json:"target,omitempty"`
	RiskReward float64    `json:"rr,omitempty"`
	Confidence float64    `json:"confidence"`
	MarketMode MarketMode `json:"market_mode"`
	ATR        float64    `json:"atr"`
	Reasons    []Reason   `json:"reasons"`
	CreatedAt  time.Time  `json:"created_at"`
}
