package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_FuzzyDistanceTooLarge(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Search:   SearchConfig{FuzzyDistance: 4},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for fuzzy distance above 3")
	}
}

func TestValidate_NegativeRate(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Indexing: IndexingConfig{RatePerSec: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Model != "gate-arabert-v1-doc" {
		t.Errorf("unexpected default model: %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.ChunkSize != 32 {
		t.Errorf("expected ChunkSize=32, got %d", cfg.Embedding.ChunkSize)
	}
	if cfg.Search.Index != "gate_transcription" {
		t.Errorf("unexpected default index: %q", cfg.Search.Index)
	}
	if cfg.Search.DefaultSize != 50 {
		t.Errorf("expected DefaultSize=50, got %d", cfg.Search.DefaultSize)
	}
	if cfg.Search.MaxSize != 1000 {
		t.Errorf("expected MaxSize=1000, got %d", cfg.Search.MaxSize)
	}
	if cfg.Search.FuzzyDistance != 2 {
		t.Errorf("expected FuzzyDistance=2, got %d", cfg.Search.FuzzyDistance)
	}
	if cfg.Indexing.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", cfg.Indexing.PageSize)
	}
	if cfg.Indexing.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Indexing.HNSWM)
	}
	if cfg.Indexing.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Indexing.HNSWEFConstruct)
	}
	if cfg.Database.RequestTimeoutSec != 5 {
		t.Errorf("expected RequestTimeoutSec=5, got %d", cfg.Database.RequestTimeoutSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{Index: "custom_idx", DefaultSize: 20, MaxSize: 200, FuzzyDistance: 1},
		Indexing: IndexingConfig{PageSize: 100, HNSWM: 16, HNSWEFConstruct: 200},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.Index != "custom_idx" {
		t.Errorf("expected Index='custom_idx', got %q", cfg.Search.Index)
	}
	if cfg.Search.FuzzyDistance != 1 {
		t.Errorf("expected FuzzyDistance=1, got %d", cfg.Search.FuzzyDistance)
	}
	if cfg.Indexing.PageSize != 100 {
		t.Errorf("expected PageSize=100, got %d", cfg.Indexing.PageSize)
	}
	if cfg.Indexing.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Indexing.HNSWM)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RAWI_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${RAWI_TEST_KEY}\nbase_url: ${RAWI_UNSET:-http://localhost}\n"))
	want := "api_key: secret\nbase_url: http://localhost\n"
	if string(out) != want {
		t.Errorf("expected %q, got %q", want, string(out))
	}
}
