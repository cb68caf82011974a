// Package config loads service settings with viper from configs/config.yml
// and COKE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/models"

	"github.com/spf13/viper"
)

const envPrefix = "COKE"

// Config is the typed view of the configuration file.
type Config struct {
	Port     string         `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Ovens    []OvenConfig   `mapstructure:"ovens"`
	Matching MatchingConfig `mapstructure:"matching"`
	Sim      SimConfig      `mapstructure:"simulator"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// OvenConfig names the chambers of one oven, either explicitly or as a
// count that expands to "1#".."N#".
type OvenConfig struct {
	ID           int      `mapstructure:"id"`
	Chambers     []string `mapstructure:"chambers"`
	ChamberCount int      `mapstructure:"chamber_count"`
}

type MatchingConfig struct {
	StrictAlternation bool `mapstructure:"strict_alternation"`
}

type SimConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Tick    time.Duration `mapstructure:"tick"`
	Step    time.Duration `mapstructure:"step"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("matching.strict_alternation", false)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", time.Second)
	v.SetDefault("simulator.step", 10*time.Minute)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "coke.telemetry")
	v.SetDefault("kafka.group_id", "coke-oven-cycles")
}

// Load reads configs/config.yml (or the file at path when non-empty) and the
// environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Sim.Enabled && c.Sim.Tick <= 0 {
		return errors.New("simulator.tick must be positive")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when kafka.enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when kafka.enabled")
		}
	}
	_, err := c.OvenSet()
	return err
}

// OvenSet builds the oven configuration. With no ovens configured it falls
// back to models.DefaultOvens.
func (c *Config) OvenSet() (models.OvenSet, error) {
	if len(c.Ovens) == 0 {
		return models.DefaultOvens(), nil
	}

	ovens := make([]*models.Oven, 0, len(c.Ovens))
	for _, oc := range c.Ovens {
		chambers := oc.Chambers
		if len(chambers) == 0 {
			chambers = models.NumberedChambers(oc.ChamberCount)
		}
		o, err := models.NewOven(oc.ID, chambers)
		if err != nil {
			return nil, fmt.Errorf("ovens: %w", err)
		}
		ovens = append(ovens, o)
	}
	set, err := models.NewOvenSet(ovens...)
	if err != nil {
		return nil, fmt.Errorf("ovens: %w", err)
	}
	return set, nil
}
