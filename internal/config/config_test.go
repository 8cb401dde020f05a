package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:  HTTPConfig{Port: 8080},
		Redis: RedisConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Retrieval: RetrievalConfig{ChunkSize: 400, ChunkOverlap: 50},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_OverlapNotBelowChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.ChunkSize = 50
	cfg.Retrieval.ChunkOverlap = 50

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Retrieval.ChunkSize != 400 {
		t.Errorf("expected ChunkSize=400, got %d", cfg.Retrieval.ChunkSize)
	}
	if cfg.Retrieval.ChunkOverlap != 50 {
		t.Errorf("expected ChunkOverlap=50, got %d", cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("expected RRFK=60, got %d", cfg.Retrieval.RRFK)
	}
	if cfg.Retrieval.CandidateLimit != 50 {
		t.Errorf("expected CandidateLimit=50, got %d", cfg.Retrieval.CandidateLimit)
	}
	if cfg.Retrieval.MaxTopK != 50 {
		t.Errorf("expected MaxTopK=50, got %d", cfg.Retrieval.MaxTopK)
	}
	if cfg.Retrieval.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Retrieval.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "lodestar:" {
		t.Errorf("expected KeyPrefix='lodestar:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.CacheTTLSec != 86400 {
		t.Errorf("expected CacheTTLSec=86400, got %d", cfg.Embedding.CacheTTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Redis:     RedisConfig{ReadinessTimeout: 15},
		Retrieval: RetrievalConfig{ChunkSize: 200, ChunkOverlap: 20, RRFK: 10, CandidateLimit: 100, MaxTopK: 25},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Retrieval.ChunkSize != 200 || cfg.Retrieval.ChunkOverlap != 20 {
		t.Errorf("chunking overridden: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.RRFK != 10 {
		t.Errorf("expected RRFK=10, got %d", cfg.Retrieval.RRFK)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("LODESTAR_TEST_KEY", "secret")
	defer os.Unsetenv("LODESTAR_TEST_KEY")

	in := []byte("api_key: ${LODESTAR_TEST_KEY}\nmodel: ${LODESTAR_TEST_MODEL:-fallback}")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nmodel: fallback" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
