package app

import (
	"strings"

	"github.com/yungbote/response-validator/internal/db"
	"github.com/yungbote/response-validator/internal/features"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/envutil"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/weights"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DB          db.Config
	ManifestDir string

	CommonVocabularyPath string
	BadWordsPath         string
	StopwordsPath        string

	DefaultFeatureWeightsID string
	DefaultFeatureWeights   weights.Weights

	BatchConcurrency int
	MetricsEnabled   bool
	Otel             observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	defaults := weights.Default.Map()
	overrides := make(map[string]float64, len(features.Keys))
	for _, k := range features.Keys {
		overrides[k] = envutil.Float("FEATURE_WEIGHT_"+strings.ToUpper(k), defaults[k], log)
	}
	fw, err := weights.ParseWeights(overrides)
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":5000", log),
		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil, log),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverSQLite, log),
			DataDir:          envutil.String("DATA_DIR", "./data", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "validator", log),
		},
		ManifestDir:             envutil.String("MANIFEST_DIR", "./manifests", log),
		CommonVocabularyPath:    envutil.String("COMMON_VOCABULARY_PATH", "", log),
		BadWordsPath:            envutil.String("BAD_WORDS_PATH", "", log),
		StopwordsPath:           envutil.String("STOPWORDS_PATH", "", log),
		DefaultFeatureWeightsID: envutil.String("DEFAULT_FEATURE_WEIGHTS_ID", weights.DefaultID, log),
		DefaultFeatureWeights:   fw,
		BatchConcurrency:        envutil.Int("VALIDATE_BATCH_CONCURRENCY", 8, log),
		MetricsEnabled:          envutil.Bool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:      envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName:  envutil.String("OTEL_SERVICE_NAME", "response-validator", log),
			Environment:  envutil.String("ENVIRONMENT", "development", log),
			Version:      Version,
			SamplerRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
			Endpoint:     envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:      envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:     envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
		},
	}, nil
}
