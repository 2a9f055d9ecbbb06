// Package config provides configuration management for the newsfuse
// application. It handles loading, validation, and access to configuration
// values from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/newsfuse/internal/acquire"
	"github.com/jonesrussell/newsfuse/internal/consensus"
	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/pipeline"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/relevance"
	"github.com/jonesrussell/newsfuse/internal/storage"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	// Environment is development, staging, or production.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" mapstructure:"debug"`
	// Schedule is the cron expression for the schedule command.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

// Config represents the application configuration.
type Config struct {
	App           AppConfig            `yaml:"app" mapstructure:"app"`
	Logger        logger.Config        `yaml:"logger" mapstructure:"logger"`
	Elasticsearch storage.Config       `yaml:"elasticsearch" mapstructure:"elasticsearch"`
	Provider      provider.Config      `yaml:"provider" mapstructure:"provider"`
	Cache         provider.CacheConfig `yaml:"cache" mapstructure:"cache"`
	Acquisition   acquire.Config       `yaml:"acquisition" mapstructure:"acquisition"`
	Relevance     relevance.Config     `yaml:"relevance" mapstructure:"relevance"`
	Consensus     consensus.Config     `yaml:"consensus" mapstructure:"consensus"`
	Summarizer    summarizer.Config    `yaml:"summarizer" mapstructure:"summarizer"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	// MemoryThreshold is the heap utilization fraction that triggers
	// reclamation.
	MemoryThreshold float64 `yaml:"memory_threshold" mapstructure:"memory_threshold"`
	// MemoryLimitBytes is the heap budget for the memory monitor.
	MemoryLimitBytes uint64 `yaml:"memory_limit_bytes" mapstructure:"memory_limit_bytes"`
}

// Load reads configuration from the given file (optional), the ambient
// config.yml, and the environment, in increasing precedence.
func Load(path string) (*Config, error) {
	// .env is a convenience for development; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NEWSFUSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		// An absent ambient config file is fine; defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.App.Debug {
		cfg.Logger.Level = "debug"
		cfg.Logger.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings a run cannot proceed without.
func (c *Config) Validate() error {
	if len(c.Elasticsearch.Addresses) == 0 && c.Elasticsearch.CloudID == "" {
		return errors.New("elasticsearch: addresses or cloud_id required")
	}
	if c.Provider.Kind == provider.KindHTTP && c.Provider.HTTP.BaseURL == "" {
		return errors.New("provider: base_url required for the http provider")
	}
	if c.MemoryThreshold < 0 || c.MemoryThreshold > 1 {
		return fmt.Errorf("memory_threshold %v out of range [0, 1]", c.MemoryThreshold)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.schedule", "0 */6 * * *")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index_name", storage.DefaultIndexName)
	v.SetDefault("provider.kind", string(provider.KindStatic))
	v.SetDefault("acquisition.headlines.country", "us")
	v.SetDefault("relevance.method", string(relevance.ThresholdKMeans))
	v.SetDefault("relevance.percentile", relevance.DefaultPercentile)
	v.SetDefault("consensus.top_n", consensus.DefaultTopN)
	v.SetDefault("summarizer.ratio", summarizer.DefaultRatio)
	v.SetDefault("summarizer.min_sentences", summarizer.DefaultMinSentences)
	v.SetDefault("pipeline.headline_limit", pipeline.DefaultHeadlineLimit)
}
