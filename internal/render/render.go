// Package render turns structured reasons into human-readable text. The core
// pipeline only deals in tagged reasons; every string lives here.
package render

import (
	"fmt"
	"strings"

	"github.com/Alias1177/LevelBot/models"
)

var checkNames = map[models.CheckKind]string{
	models.CheckTrendlineBreakout: "trendline breakout",
	models.CheckLevelBreakout:     "level breakout",
	models.CheckMTFAlignment:      "multi-timeframe alignment",
	models.CheckPOCProximity:      "POC proximity",
	models.CheckLowVolumeNode:     "low-volume node",
	models.CheckVolumeSpike:       "volume spike",
	models.CheckOverextension:     "overextension",
	models.CheckLevelAge:          "level age",
	models.CheckMACD:              "MACD",
	models.CheckStructure:         "structure",
}

// Reason renders one reason as "check [tf]: note (+weight)".
func Reason(r models.Reason) string {
	var b strings.Builder
	b.WriteString(checkNames[r.Check])
	if r.Timeframe != "" {
		b.WriteString(" [" + r.Timeframe + "]")
	}
	if r.Note != "" {
		b.WriteString(": " + r.Note)
	}
	if r.Confirmed && r.Weight > 0 {
		fmt.Fprintf(&b, " (+%.1f)", r.Weight)
	}
	return b.String()
}

// Reasons renders the ordered reason list.
func Reasons(rs []models.Reason) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = Reason(r)
	}
	return out
}

// Scenario renders a one-line summary followed by the reason list, the shape
// consumed by the console formatter and the Telegram notifier.
func Scenario(s *models.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s", s.Symbol, s.Status)
	if s.Direction != "" {
		fmt.Fprintf(&b, " | %s", s.Direction)
	}
	fmt.Fprintf(&b, " | mode=%s | confidence=%.1f", s.MarketMode, s.Confidence)
	if s.RiskReward > 0 {
		fmt.Fprintf(&b, " | RR=%.2f", s.RiskReward)
	}
	if s.Entry > 0 {
		fmt.Fprintf(&b, "\nentry=%.5f stop=%.5f target=%.5f atr=%.5f", s.Entry, s.Stop, s.Target, s.ATR)
	}
	for _, line := range Reasons(s.Reasons) {
		b.WriteString("\n- " + line)
	}
	return b.String()
}
