package trendlines

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/LevelBot/models"
)

func testFitter() Fitter {
	return Fitter{MinSlope: 0.0002, Tolerance: 0.01, Touches: 2}
}

func TestFitAscendingSupport(t *testing.T) {
	swings := []models.SwingPoint{
		{Index: 0, Price: 100, Kind: models.SwingLow},
		{Index: 10, Price: 110, Kind: models.SwingLow},
	}

	line, err := testFitter().Fit("15m", swings, models.SwingLow, 20)
	require.NoError(t, err)

	assert.Equal(t, models.LineUp, line.Direction)
	assert.Equal(t, 1.0, line.Slope)
	assert.Equal(t, 100.0, line.Intercept)
	assert.Equal(t, 2, line.Touches)
	assert.Equal(t, 120.0, line.Projection(), "projected at the latest bar of the series")
}

func TestFitRejectsTooFewPoints(t *testing.T) {
	swings := []models.SwingPoint{
		{Index: 3, Price: 100, Kind: models.SwingLow},
		{Index: 8, Price: 120, Kind: models.SwingHigh},
	}

	_, err := testFitter().Fit("1h", swings, models.SwingLow, 10)
	require.Error(t, err)

	var noLine *NoTrendlineError
	require.True(t, errors.As(err, &noLine))
	assert.Equal(t, "1h", noLine.Timeframe)
	assert.Equal(t, models.SwingLow, noLine.Kind)
}

func TestFitRejectsWrongSlopeSign(t *testing.T) {
	// descending lows cannot form a support line
	swings := []models.SwingPoint{
		{Index: 0, Price: 110, Kind: models.SwingLow},
		{Index: 10, Price: 100, Kind: models.SwingLow},
	}
	_, err := testFitter().Fit("15m", swings, models.SwingLow, 20)
	var noLine *NoTrendlineError
	require.True(t, errors.As(err, &noLine))
}

func TestFitDiscardsBreachedBoundary(t *testing.T) {
	// the pair (0, 10) is breached by the low at index 5, leaving (5, 10)
	swings := []models.SwingPoint{
		{Index: 0, Price: 100, Kind: models.SwingLow},
		{Index: 5, Price: 90, Kind: models.SwingLow},
		{Index: 10, Price: 110, Kind: models.SwingLow},
	}

	line, err := testFitter().Fit("15m", swings, models.SwingLow, 12)
	require.NoError(t, err)

	require.Len(t, line.Points, 2)
	assert.Equal(t, 5, line.Points[0].Index)
	assert.Equal(t, 10, line.Points[1].Index)
	assert.Equal(t, 4.0, line.Slope)
}

func TestFitBoundaryHoldsForMembers(t *testing.T) {
	swings := []models.SwingPoint{
		{Index: 0, Price: 100, Kind: models.SwingLow},
		{Index: 8, Price: 104.5, Kind: models.SwingLow},
		{Index: 16, Price: 108, Kind: models.SwingLow},
		{Index: 24, Price: 112, Kind: models.SwingLow},
	}

	f := testFitter()
	line, err := f.Fit("15m", swings, models.SwingLow, 30)
	require.NoError(t, err)

	for _, p := range line.Points {
		projected := line.ValueAt(p.Index)
		diff := math.Abs(p.Price-projected) / projected
		assert.LessOrEqual(t, diff, f.Tolerance, "member %d drifted off the line", p.Index)
	}
	assert.GreaterOrEqual(t, line.Touches, f.Touches)
}

func TestFitDescendingResistance(t *testing.T) {
	swings := []models.SwingPoint{
		{Index: 2, Price: 120, Kind: models.SwingHigh},
		{Index: 12, Price: 110, Kind: models.SwingHigh},
	}

	line, err := testFitter().Fit("1h", swings, models.SwingHigh, 20)
	require.NoError(t, err)

	assert.Equal(t, models.LineDown, line.Direction)
	assert.Equal(t, -1.0, line.Slope)
	assert.Equal(t, 102.0, line.Projection())
}

func TestBreakouts(t *testing.T) {
	up := &models.Trendline{
		Timeframe: "15m",
		Kind:      models.SwingLow,
		Slope:     1.0,
		Intercept: 100,
		Direction: models.LineUp,
		LastIndex: 20, // projects to 120
	}
	down := &models.Trendline{
		Timeframe: "1h",
		Kind:      models.SwingHigh,
		Slope:     -1.0,
		Intercept: 140,
		Direction: models.LineDown,
		LastIndex: 20, // projects to 120
	}
	lines := []*models.Trendline{up, down, nil}

	long := Breakouts(lines, 125, models.DirectionLong)
	require.Len(t, long, 1)
	assert.Equal(t, up, long[0].Line)
	assert.Equal(t, 120.0, long[0].Price, "breakout carries the projection, not the close")
	assert.Equal(t, models.DirectionLong, long[0].Direction)

	assert.Empty(t, Breakouts(lines, 115, models.DirectionLong), "close under the projection is no breakout")

	short := Breakouts(lines, 115, models.DirectionShort)
	require.Len(t, short, 1)
	assert.Equal(t, down, short[0].Line)
}
