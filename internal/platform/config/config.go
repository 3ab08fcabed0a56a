// Package config binds the environment variables named in spec §6 via
// viper, with an optional HashiCorp Vault overlay for secrets, mirroring
// how trm-service bootstraps its Vault-backed PG_URL/NATS_URL before
// falling back to plain environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment variable spec §6 recognizes.
type Config struct {
	DatabaseURL           string
	StorageBucketPrefix   string
	CarrierAPIKey         string
	ClassifierAPIKey      string
	MailProvider          string
	JWTVerifierKey        string
	WorkerPoolSize        int
	PollIntervalOverrides map[string]time.Duration

	NATSURL  string
	RedisURL string

	CarrierBaseURL string
	ListenAddr     string
	BlobStoreRoot  string

	VaultAddr       string
	VaultToken      string
	VaultSecretPath string
}

// Load reads environment variables (and an optional .env-style config file)
// into a Config, applying the defaults spec §6 specifies.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("WORKER_POOL_SIZE", 16)
	v.SetDefault("STORAGE_BUCKET_PREFIX", "tracehub")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("VAULT_ADDR", "http://localhost:8200")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("BLOB_STORE_ROOT", "./data/blobs")

	cfg := &Config{
		DatabaseURL:         v.GetString("DATABASE_URL"),
		StorageBucketPrefix: v.GetString("STORAGE_BUCKET_PREFIX"),
		CarrierAPIKey:       v.GetString("CARRIER_API_KEY"),
		ClassifierAPIKey:    v.GetString("CLASSIFIER_API_KEY"),
		MailProvider:        v.GetString("MAIL_PROVIDER"),
		JWTVerifierKey:      v.GetString("JWT_VERIFIER_KEY"),
		WorkerPoolSize:      v.GetInt("WORKER_POOL_SIZE"),
		NATSURL:             v.GetString("NATS_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		CarrierBaseURL:      v.GetString("CARRIER_BASE_URL"),
		ListenAddr:          v.GetString("LISTEN_ADDR"),
		BlobStoreRoot:       v.GetString("BLOB_STORE_ROOT"),
		VaultAddr:           v.GetString("VAULT_ADDR"),
		VaultToken:          v.GetString("VAULT_TOKEN"),
		VaultSecretPath:     v.GetString("VAULT_SECRET_PATH"),
	}

	if raw := v.GetString("POLL_INTERVAL_OVERRIDES"); raw != "" {
		overrides, err := parsePollOverrides(raw)
		if err != nil {
			return nil, fmt.Errorf("parse POLL_INTERVAL_OVERRIDES: %w", err)
		}
		cfg.PollIntervalOverrides = overrides
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 16
	}

	return cfg, nil
}

// parsePollOverrides decodes a JSON object of shipment-state -> Go duration
// string, e.g. {"in_transit":"30m"}.
func parsePollOverrides(raw string) (map[string]time.Duration, error) {
	var asStrings map[string]string
	if err := json.Unmarshal([]byte(raw), &asStrings); err != nil {
		return nil, err
	}
	out := make(map[string]time.Duration, len(asStrings))
	for k, s := range asStrings {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}
