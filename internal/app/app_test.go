package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/services"
	"github.com/yungbote/response-validator/internal/weights"
)

const biologyVUID = "185cbf87-c72e-48f5-b51e-f14f21b5eabd@4"

func setTestEnv(t *testing.T, dataDir string) {
	t.Helper()
	t.Setenv("LOG_MODE", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("MANIFEST_DIR", "../ingestion/manifest/testdata")
	t.Setenv("OTEL_ENABLED", "false")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FEATURE_WEIGHT_BAD_WORD_COUNT", "-4.5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.org, https://b.example.org")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":5000" || cfg.DefaultFeatureWeightsID != weights.DefaultID || cfg.BatchConcurrency != 8 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DefaultFeatureWeights.BadWordCount != -4.5 || cfg.DefaultFeatureWeights.DomainWordCount != weights.Default.DomainWordCount {
		t.Fatalf("unexpected default weights %+v", cfg.DefaultFeatureWeights)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.org" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestAppRestoresStateAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	setTestEnv(t, dir)
	ctx := context.Background()

	first, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := first.Services.Ecosystem.ImportFile(ctx, "biology.yml"); err != nil {
		first.Close()
		t.Fatalf("ImportFile: %v", err)
	}
	custom := weights.Default.Map()
	custom["common_word_count"] = 0.1
	id, created, err := first.Services.FeatureWeights.Store(ctx, mustJSON(t, custom))
	if err != nil || !created {
		first.Close()
		t.Fatalf("Store: id=%q created=%v err=%v", id, created, err)
	}
	if err := first.Services.FeatureWeights.SetBookDefault(ctx, biologyVUID, id); err != nil {
		first.Close()
		t.Fatalf("SetBookDefault: %v", err)
	}
	first.Close()

	second, err := New(ctx)
	if err != nil {
		t.Fatalf("New after restart: %v", err)
	}
	defer second.Close()

	if !second.Services.Ecosystem.Snapshot().HasBook(biologyVUID) {
		t.Fatalf("imported book not restored")
	}
	if got := second.Services.FeatureWeights.EffectiveBookDefault(biologyVUID); got != id {
		t.Fatalf("book default = %q, want %q", got, id)
	}
	if got := second.Services.FeatureWeights.GlobalDefault(); got != weights.DefaultID {
		t.Fatalf("global default = %q", got)
	}
	res, err := second.Services.Validator.Validate(ctx, services.ValidationRequest{
		Response: "organelle cytoplasm",
		BookVUID: biologyVUID,
		Options:  normalization.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.FeatureWeightsID != id || !res.IsValid {
		t.Fatalf("unexpected result %+v", res)
	}
	if second.Router == nil {
		t.Fatalf("router not wired")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
