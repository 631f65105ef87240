package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/LevelBot/models"
)

func TestReason(t *testing.T) {
	r := models.Reason{
		Check:     models.CheckMTFAlignment,
		Confirmed: true,
		Weight:    1.5,
		Note:      "higher timeframes agree",
	}
	assert.Equal(t, "multi-timeframe alignment: higher timeframes agree (+1.5)", Reason(r))

	r = models.Reason{
		Check:     models.CheckMACD,
		Timeframe: "1h",
		Confirmed: false,
		Weight:    1.0,
		Note:      "MACD does not confirm",
	}
	assert.Equal(t, "MACD [1h]: MACD does not confirm", Reason(r), "unconfirmed reasons show no weight")
}

func TestScenario(t *testing.T) {
	s := &models.Scenario{
		Symbol:     "BTCUSDT",
		Status:     models.StatusValidWeak,
		Direction:  models.DirectionLong,
		Entry:      352.9,
		Stop:       344.8,
		Target:     377.2,
		RiskReward: 3.0,
		Confidence: 3.0,
		MarketMode: models.ModeNeutral,
		ATR:        5.78,
		Reasons: []models.Reason{
			{Check: models.CheckTrendlineBreakout, Timeframe: "15m", Confirmed: true, Note: "trendline breakout"},
		},
	}

	out := Scenario(s)
	assert.Contains(t, out, "BTCUSDT | VALID_WEAK | LONG")
	assert.Contains(t, out, "RR=3.00")
	assert.Contains(t, out, "entry=352.90000")
	assert.Contains(t, out, "- trendline breakout [15m]: trendline breakout")
	assert.Equal(t, 2, strings.Count(out, "\n"), "summary, price block, one reason")
}

func TestScenarioNoSetup(t *testing.T) {
	s := &models.Scenario{
		Symbol:     "ETHUSDT",
		Status:     models.StatusNoSetup,
		MarketMode: models.ModeRange,
		Reasons: []models.Reason{
			{Check: models.CheckStructure, Note: "no structural levels detected"},
		},
	}

	out := Scenario(s)
	assert.Contains(t, out, "ETHUSDT | NO_SETUP")
	assert.NotContains(t, out, "entry=", "no price block without a direction")
	assert.NotContains(t, out, "RR=")
}
