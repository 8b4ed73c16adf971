// Package config loads the controller configuration from YAML, falling back
// to per-package defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/cache"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/fusion"
)

// #region config
// Config is the YAML file shape. Durations are expressed in seconds so the
// file stays plain numbers.
type Config struct {
	DBPath  string `yaml:"db_path"`
	LogMode string `yaml:"log_mode"`

	Cache struct {
		TTLSeconds            float64 `yaml:"ttl_seconds"`
		RefreshTimeoutSeconds float64 `yaml:"refresh_timeout_seconds"`
	} `yaml:"cache"`

	Calibrator struct {
		MaxShiftPerUpdate   float64 `yaml:"max_shift_per_update"`
		DampeningFactor     float64 `yaml:"dampening_factor"`
		MinSamplesForCommit int     `yaml:"min_samples_for_commit"`
		MaxWeight           float64 `yaml:"max_weight"`
		MinImpact           float64 `yaml:"min_impact"`
		WriteTimeoutSeconds float64 `yaml:"write_timeout_seconds"`
	} `yaml:"calibrator"`

	Fusion struct {
		HighPreservation   float64 `yaml:"high_preservation"`
		MinPreservation    float64 `yaml:"min_preservation"`
		LongPreservation   float64 `yaml:"long_preservation"`
		MaxNeuralLength    int     `yaml:"max_neural_length"`
		SentenceSimilarity float64 `yaml:"sentence_similarity"`
		MaxNeuralAdditions int     `yaml:"max_neural_additions"`
	} `yaml:"fusion"`
}
// #endregion config

// #region default
// Default returns a config mirroring the per-package defaults.
func Default() Config {
	var c Config
	c.DBPath = "fusion_weights.db"
	c.LogMode = "dev"

	cc := cache.DefaultConfig()
	c.Cache.TTLSeconds = cc.TTL.Seconds()
	c.Cache.RefreshTimeoutSeconds = cc.RefreshTimeout.Seconds()

	cal := calibrator.DefaultConfig()
	c.Calibrator.MaxShiftPerUpdate = cal.MaxShiftPerUpdate
	c.Calibrator.DampeningFactor = cal.DampeningFactor
	c.Calibrator.MinSamplesForCommit = cal.MinSamplesForCommit
	c.Calibrator.MaxWeight = cal.MaxWeight
	c.Calibrator.MinImpact = cal.MinImpact
	c.Calibrator.WriteTimeoutSeconds = cal.WriteTimeout.Seconds()

	f := fusion.DefaultConfig()
	c.Fusion.HighPreservation = f.HighPreservation
	c.Fusion.MinPreservation = f.MinPreservation
	c.Fusion.LongPreservation = f.LongPreservation
	c.Fusion.MaxNeuralLength = f.MaxNeuralLength
	c.Fusion.SentenceSimilarity = f.SentenceSimilarity
	c.Fusion.MaxNeuralAdditions = f.MaxNeuralAdditions

	return c
}
// #endregion default

// #region load
// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}
// #endregion load

// #region accessors
// CacheConfig converts the file shape into the cache package config.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		TTL:            secondsToDuration(c.Cache.TTLSeconds),
		RefreshTimeout: secondsToDuration(c.Cache.RefreshTimeoutSeconds),
	}
}

// CalibratorConfig converts the file shape into the calibrator package config.
func (c Config) CalibratorConfig() calibrator.Config {
	return calibrator.Config{
		MaxShiftPerUpdate:   c.Calibrator.MaxShiftPerUpdate,
		DampeningFactor:     c.Calibrator.DampeningFactor,
		MinSamplesForCommit: c.Calibrator.MinSamplesForCommit,
		MaxWeight:           c.Calibrator.MaxWeight,
		MinImpact:           c.Calibrator.MinImpact,
		WriteTimeout:        secondsToDuration(c.Calibrator.WriteTimeoutSeconds),
	}
}

// FusionConfig converts the file shape into the fusion package config.
func (c Config) FusionConfig() fusion.Config {
	f := fusion.DefaultConfig()
	f.HighPreservation = c.Fusion.HighPreservation
	f.MinPreservation = c.Fusion.MinPreservation
	f.LongPreservation = c.Fusion.LongPreservation
	f.MaxNeuralLength = c.Fusion.MaxNeuralLength
	f.SentenceSimilarity = c.Fusion.SentenceSimilarity
	f.MaxNeuralAdditions = c.Fusion.MaxNeuralAdditions
	return f
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
// #endregion accessors
