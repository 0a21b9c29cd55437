package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string `yaml:"addr"`
	PostgresConn    string `yaml:"postgres_conn"`
	MigrationsDir   string `yaml:"migrations_dir"`
	FeedRetention   int    `yaml:"feed_retention"`
	SubscriberQueue int    `yaml:"subscriber_queue"`
}

// Load builds the config from defaults, then environment variables,
// then an optional yaml file (the file wins).
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("SERVER_ADDRESS", ":8080"),
		PostgresConn:    getEnv("POSTGRES_CONN", ""),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "migrations"),
		FeedRetention:   getEnvInt("FEED_RETENTION", 1024),
		SubscriberQueue: getEnvInt("SUBSCRIBER_QUEUE_SIZE", 256),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.FeedRetention <= 0 {
		return nil, fmt.Errorf("feed retention must be positive, got %d", cfg.FeedRetention)
	}
	if cfg.SubscriberQueue <= 0 {
		return nil, fmt.Errorf("subscriber queue size must be positive, got %d", cfg.SubscriberQueue)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
