package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictAppendDeduplicates(t *testing.T) {
	var v ContextVerdict
	v.Append(Reason{Check: CheckMACD, Timeframe: "1h", Confirmed: true, Weight: 1.0})
	v.Append(Reason{Check: CheckMACD, Timeframe: "1h", Confirmed: false, Note: "duplicate"})
	v.Append(Reason{Check: CheckMACD, Timeframe: "4h", Confirmed: true, Weight: 1.0})

	assert.Len(t, v.Reasons, 2, "same check on the same timeframe is recorded once")
	assert.True(t, v.Reasons[0].Confirmed, "first occurrence wins")
	assert.Equal(t, "4h", v.Reasons[1].Timeframe)
}

func TestVerdictConfidence(t *testing.T) {
	var v ContextVerdict
	assert.Zero(t, v.Confidence())

	v.Append(Reason{Check: CheckMTFAlignment, Confirmed: true, Weight: 1.5})
	v.Append(Reason{Check: CheckVolumeSpike, Confirmed: false, Weight: 1.0})
	assert.Equal(t, 1.5, v.Confidence(), "unconfirmed reasons never count")

	// adding confirmations only ever raises the score
	checks := []CheckKind{CheckPOCProximity, CheckLowVolumeNode, CheckMACD, CheckLevelAge}
	prev := v.Confidence()
	for _, check := range checks {
		v.Append(Reason{Check: check, Confirmed: true, Weight: 0.5})
		assert.GreaterOrEqual(t, v.Confidence(), prev)
		prev = v.Confidence()
	}
	assert.Equal(t, 3.5, v.Confidence())
}

func TestLevelFirstIndex(t *testing.T) {
	lvl := Level{Members: []SwingPoint{
		{Index: 12}, {Index: 4}, {Index: 30},
	}}
	assert.Equal(t, 4, lvl.FirstIndex())
}

func TestTrendlineProjection(t *testing.T) {
	line := Trendline{Slope: 0.5, Intercept: 100, LastIndex: 10}
	assert.Equal(t, 105.0, line.Projection())
	assert.Equal(t, 110.0, line.ValueAt(20))
}
