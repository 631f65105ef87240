package main

import (
	"context"
	"flag"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/LevelBot/internal/config"
	"github.com/Alias1177/LevelBot/internal/marketdata"
	"github.com/Alias1177/LevelBot/internal/notify"
	"github.com/Alias1177/LevelBot/internal/render"
	"github.com/Alias1177/LevelBot/internal/scenario"
	"github.com/Alias1177/LevelBot/internal/storage"
	"github.com/Alias1177/LevelBot/internal/watch"
	"github.com/Alias1177/LevelBot/models"
)

func init() {
	// если .env лежит в корне проекта, без аргумента он сам найдёт
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration rejected")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
	logger := log.With().Str("component", "main").Logger()

	client := marketdata.NewClient(cfg.ExchangeBaseURL, time.Duration(cfg.RequestTimeout)*time.Second)

	var db *storage.DB
	if cfg.DatabaseURL != "" {
		db, err = storage.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
	}
	tracker, err := storage.NewTracker(db, cfg.DailyRejectionLimit, cfg.MaxConsecutiveRejections)
	if err != nil {
		log.Fatal().Err(err).Msg("loading hygiene counters failed")
	}

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram setup failed")
	}

	evaluator := scenario.New(cfg)
	guard := watch.NewVolatilityGuard(2.5, 5*time.Minute)

	ctx := context.Background()
	symbols := cfg.Symbols
	lastRefresh := time.Time{}

	logger.Info().Strs("symbols", symbols).Msg("LevelBot analytics engine started")

	for {
		// refresh the watch list every two hours when none is pinned
		if len(cfg.Symbols) == 0 && time.Since(lastRefresh) > 2*time.Hour {
			refreshed, err := watch.TopLiquidSymbols(ctx, client, 20)
			if err != nil {
				logger.Warn().Err(err).Msg("symbol refresh failed, keeping previous list")
			} else {
				symbols = refreshed
				lastRefresh = time.Now()
				logger.Info().Strs("symbols", symbols).Msg("active symbols updated")
			}
		}

		runCycle(ctx, cfg, client, evaluator, tracker, db, notifier, guard, symbols)

		logger.Info().Msg("cycle complete")
		time.Sleep(time.Duration(cfg.CycleSeconds) * time.Second)
	}
}

// runCycle evaluates every symbol through a bounded worker pool. Each
// evaluation is self-contained; the pool exists purely for fetch throughput.
func runCycle(
	ctx context.Context,
	cfg config.Config,
	client *marketdata.Client,
	evaluator *scenario.Evaluator,
	tracker *storage.Tracker,
	db *storage.DB,
	notifier *notify.Notifier,
	guard *watch.VolatilityGuard,
	symbols []string,
) {
	logger := log.With().Str("component", "cycle").Logger()

	jobs := make(chan string)
	results := make(chan *models.Scenario)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				s, err := evaluateSymbol(ctx, cfg, client, evaluator, symbol)
				if err != nil {
					logger.Warn().Err(err).Str("symbol", symbol).Msg("evaluation aborted")
					continue
				}
				results <- s
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			if tracker.ShouldSkip(symbol) {
				logger.Info().Str("symbol", symbol).Msg("hygiene limit reached, skipping")
				continue
			}
			jobs <- symbol
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for s := range results {
		scenario.Stamp(s)
		tracker.Record(s)

		if db != nil {
			if err := db.LogScenario(s); err != nil {
				logger.Error().Err(err).Str("symbol", s.Symbol).Msg("scenario log failed")
			}
		}

		logger.Info().
			Str("symbol", s.Symbol).
			Str("status", string(s.Status)).
			Str("mode", string(s.MarketMode)).
			Float64("confidence", s.Confidence).
			Float64("rr", s.RiskReward).
			Msg("scenario finalized")

		paused := guard.Push(s.ATR)
		if s.Status == models.StatusValidStrong || s.Status == models.StatusValidWeak {
			if paused && s.Confidence < cfg.StrongThreshold {
				logger.Warn().Str("symbol", s.Symbol).Msg("volatility guard active, notification suppressed")
				continue
			}
			logger.Info().Msg(render.Scenario(s))
			notifier.Send(s)
		}
	}
}

// evaluateSymbol fetches bars for every configured timeframe and runs the
// pipeline. The fetch is the only blocking step; evaluation itself is a pure
// computation over the slices.
func evaluateSymbol(
	ctx context.Context,
	cfg config.Config,
	client *marketdata.Client,
	evaluator *scenario.Evaluator,
	symbol string,
) (*models.Scenario, error) {
	bars := make(map[string][]models.Candle, len(cfg.Timeframes))
	for _, tf := range cfg.Timeframes {
		candles, err := client.GetKlines(ctx, symbol, tf, cfg.SwingLookback)
		if err != nil {
			return nil, err
		}
		bars[tf] = candles
	}
	return evaluator.Evaluate(symbol, bars)
}
