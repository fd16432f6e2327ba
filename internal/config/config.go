package config

import (
	"fmt"
	"os"
	"time"

	"habitledger/pkg/config"
)

// ProgressConfig controls the progress engine.
type ProgressConfig struct {
	// IANA zone used to cut instants into calendar days; empty means UTC.
	Timezone string        `yaml:"timezone"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Location resolves Timezone.
func (p ProgressConfig) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid progress.timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
}

type Config struct {
	DB       config.DBConfig     `yaml:"db"`
	Redis    config.RedisConfig  `yaml:"redis"`
	MQ       config.MQConfig     `yaml:"mq"`
	JWT      config.JWTConfig    `yaml:"jwt"`
	Server   config.ServerConfig `yaml:"server"`
	Progress ProgressConfig      `yaml:"progress"`
	Outbox   OutboxConfig        `yaml:"outbox"`
	LogLevel string              `yaml:"log_level"`
}

// Load 使用统一配置中心：base.yaml + <env>.yaml + secrets.env，环境变量优先级最高
func Load(env, configDir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := Default()
	if err := config.Decode(cfgMap, cfg); err != nil {
		return nil, err
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	overrideProgressFromEnv(&cfg.Progress)

	if _, err := cfg.Progress.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnvironment reads CONFIG_ENV / CONFIG_DIR and loads.
func FromEnvironment() (*Config, error) {
	return Load(DefaultEnv(), DefaultDir())
}

// Default values apply to anything the YAML leaves out.
func Default() *Config {
	return &Config{
		DB:     config.DBConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "habitledger"},
		Server: config.ServerConfig{Port: ":8080"},
		Progress: ProgressConfig{
			CacheTTL: 5 * time.Minute,
			LockTTL:  5 * time.Second,
		},
		Outbox: OutboxConfig{
			Interval:   time.Second,
			BatchSize:  100,
			MaxRetries: 5,
		},
		LogLevel: "info",
	}
}

func overrideProgressFromEnv(p *ProgressConfig) {
	if tz := os.Getenv("PROGRESS_TIMEZONE"); tz != "" {
		p.Timezone = tz
	}
	if ttl := os.Getenv("PROGRESS_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			p.CacheTTL = d
		}
	}
	if ttl := os.Getenv("PROGRESS_LOCK_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			p.LockTTL = d
		}
	}
}

// DefaultEnv is CONFIG_ENV or "local".
func DefaultEnv() string { return config.GetConfigEnv() }

// DefaultDir is CONFIG_DIR or "config".
func DefaultDir() string { return config.GetEnv("CONFIG_DIR", "config") }
