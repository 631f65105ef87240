package watch

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/LevelBot/internal/marketdata"
)

// VolatilityGuard pauses evaluation when the fast ATR blows past its recent
// average. A triggered guard stays on for the cool-off period.
type VolatilityGuard struct {
	MaxFactor float64
	CoolOff   time.Duration

	window      []float64
	pausedUntil time.Time
	now         func() time.Time
}

func NewVolatilityGuard(maxFactor float64, coolOff time.Duration) *VolatilityGuard {
	if maxFactor == 0 {
		maxFactor = 2.5
	}
	if coolOff == 0 {
		coolOff = 5 * time.Minute
	}
	return &VolatilityGuard{
		MaxFactor: maxFactor,
		CoolOff:   coolOff,
		now:       time.Now,
	}
}

// Push feeds the latest ATR sample and reports whether evaluation should
// pause. The spike comparison needs a few samples of history first.
func (g *VolatilityGuard) Push(atr float64) bool {
	now := g.now()
	if now.Before(g.pausedUntil) {
		return true
	}

	g.window = append(g.window, atr)
	if len(g.window) > 20 {
		g.window = g.window[1:]
	}
	if len(g.window) < 5 {
		return false
	}

	var sum float64
	for _, v := range g.window[:len(g.window)-1] {
		sum += v
	}
	avg := sum / float64(len(g.window)-1)
	if avg > 0 && atr > avg*g.MaxFactor {
		g.pausedUntil = now.Add(g.CoolOff)
		return true
	}
	return false
}

// TopLiquidSymbols returns the USDT pairs with the highest 24h quote volume.
func TopLiquidSymbols(ctx context.Context, client *marketdata.Client, limit int) ([]string, error) {
	stats, err := client.GetTickerStats(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		symbol string
		volume float64
	}
	pairs := make([]ranked, 0, len(stats))
	for _, s := range stats {
		if !strings.HasSuffix(s.Symbol, "USDT") {
			continue
		}
		vol, err := strconv.ParseFloat(s.QuoteVolume, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, ranked{symbol: s.Symbol, volume: vol})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].volume != pairs[j].volume {
			return pairs[i].volume > pairs[j].volume
		}
		return pairs[i].symbol < pairs[j].symbol
	})

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	symbols := make([]string, len(pairs))
	for i, p := range pairs {
		symbols[i] = p.symbol
	}
	return symbols, nil
}
