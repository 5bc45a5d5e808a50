package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/data/aggregates"
	"github.com/yungbote/response-validator/internal/db"
	"github.com/yungbote/response-validator/internal/ingestion/manifest"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/services"
	"github.com/yungbote/response-validator/internal/vocabulary"
	"github.com/yungbote/response-validator/internal/weights"
)

type Services struct {
	Ecosystem      *services.EcosystemService
	FeatureWeights *services.FeatureWeightService
	Validator      *services.Validator
}

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Services Services
	Router   *gin.Engine

	started      time.Time
	otelShutdown func(context.Context) error
}

// New loads configuration, restores persisted state and wires the HTTP
// surface. The returned App owns the database connection.
func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &App{Log: log, Cfg: cfg, started: time.Now()}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = dbs
	if err := dbs.AutoMigrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	log, cfg := a.Log, a.Cfg

	log.Info("Loading word lists...")
	common, bad, stop, err := loadWordLists(cfg)
	if err != nil {
		return err
	}

	dataset := aggregates.NewDatasetAggregate(aggregates.BaseDeps{
		DB:    a.DB.DB(),
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(a.Metrics),
	})

	log.Info("Restoring vocabulary and feature weights...")
	vocab := vocabulary.NewStore(log, dataset, common, bad)
	tables, err := dataset.LoadTables(ctx)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	if err := vocab.Load(tables); err != nil {
		return fmt.Errorf("restore vocabulary: %w", err)
	}

	ws := weights.NewStore(log, dataset, vocab)
	sets, defaults, err := dataset.LoadRegistry(ctx)
	if err != nil {
		return fmt.Errorf("load feature weights: %w", err)
	}
	ws.Load(sets, defaults)
	if err := ws.Bootstrap(ctx, cfg.DefaultFeatureWeightsID, cfg.DefaultFeatureWeights); err != nil {
		return fmt.Errorf("seed feature weights: %w", err)
	}

	a.Services = Services{
		Ecosystem: services.NewEcosystemService(services.EcosystemDeps{
			Log:         log,
			Parser:      manifest.NewParser(stop, common),
			Vocabulary:  vocab,
			Metrics:     a.Metrics,
			ManifestDir: cfg.ManifestDir,
		}),
		FeatureWeights: services.NewFeatureWeightService(log, ws, a.Metrics),
		Validator: services.NewValidator(services.ValidatorDeps{
			Log:              log,
			Vocabulary:       vocab,
			Weights:          ws,
			Normalizer:       normalization.NewNormalizer(stop, normalization.NewLexiconSpellChecker(common)),
			Metrics:          a.Metrics,
			BatchConcurrency: cfg.BatchConcurrency,
		}),
	}
	services.RecordDatasetSizes(a.Metrics, vocab.Snapshot())
	a.Metrics.SetFeatureWeightSets(ws.Len())

	a.Router = wireRouter(a)
	log.Info("Validator ready", "books", len(vocab.Snapshot().Books()), "feature_weight_sets", ws.Len())
	return nil
}

func loadWordLists(cfg Config) (common, bad *vocabulary.Lexicon, stop normalization.WordList, err error) {
	common, bad, stop = vocabulary.DefaultCommon(), vocabulary.DefaultBad(), normalization.DefaultStopwords()
	if cfg.CommonVocabularyPath != "" {
		if common, err = vocabulary.LoadLexiconFile(cfg.CommonVocabularyPath); err != nil {
			return nil, nil, nil, fmt.Errorf("load common vocabulary: %w", err)
		}
	}
	if cfg.BadWordsPath != "" {
		if bad, err = vocabulary.LoadLexiconFile(cfg.BadWordsPath); err != nil {
			return nil, nil, nil, fmt.Errorf("load bad words: %w", err)
		}
	}
	if cfg.StopwordsPath != "" {
		if stop, err = normalization.LoadStopwordsFile(cfg.StopwordsPath); err != nil {
			return nil, nil, nil, fmt.Errorf("load stopwords: %w", err)
		}
	}
	return common, bad, stop, nil
}

// Run serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving HTTP", "addr", a.Cfg.HTTPAddr)
	return httpServer(a).Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
