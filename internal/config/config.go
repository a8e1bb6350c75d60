package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config captures the tunables required to start the notary server.
type Config struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
	PQSeal bool   `toml:"pq_seal"`

	NTP    NTPConfig    `toml:"ntp"`
	Verify VerifyConfig `toml:"verify"`

	Logger *log.Logger `toml:"-"`
}

// NTPConfig controls the time quorum.
type NTPConfig struct {
	Servers            []string `toml:"servers"`
	PerSourceTimeoutMs int      `toml:"per_source_timeout_ms"`
	OverallTimeoutMs   int      `toml:"overall_timeout_ms"`
	MaxDeviationMs     float64  `toml:"max_deviation_ms"`
	MinSuccessful      int      `toml:"min_successful"`
}

// VerifyConfig bounds what the verifier accepts.
type VerifyConfig struct {
	MinSuccessful  int     `toml:"min_successful"`
	MaxDeviationMs float64 `toml:"max_deviation_ms"`
	MaxAgeHours    int     `toml:"max_age_hours"`
}

func Default() Config {
	return Config{
		Addr:   ":8443",
		DBPath: "notary.db",
		PQSeal: true,
		NTP: NTPConfig{
			Servers: []string{
				"time.google.com",
				"time.cloudflare.com",
				"time.nist.gov",
				"time.apple.com",
				"pool.ntp.org",
			},
			PerSourceTimeoutMs: 3000,
			OverallTimeoutMs:   5000,
			MaxDeviationMs:     500,
			MinSuccessful:      3,
		},
		Verify: VerifyConfig{
			MinSuccessful:  3,
			MaxDeviationMs: 500,
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string, logger *log.Logger) (Config, error) {
	cfg := Default()
	cfg.Logger = logger

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *NTPConfig) PerSourceTimeout() time.Duration {
	return time.Duration(c.PerSourceTimeoutMs) * time.Millisecond
}

func (c *NTPConfig) OverallTimeout() time.Duration {
	return time.Duration(c.OverallTimeoutMs) * time.Millisecond
}

func (c *VerifyConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}
