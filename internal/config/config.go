package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service struct {
		BaseURL         string  `yaml:"base_url"`
		APIKey          string  `yaml:"api_key"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
		WriteRate       float64 `yaml:"write_rate"`
		WriteBurst      int     `yaml:"write_burst"`
	} `yaml:"service"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Planner struct {
		BaseCellWidth         int `yaml:"base_cell_width"`
		BaseRowHeight         int `yaml:"base_row_height"`
		ZoomPercent           int `yaml:"zoom_percent"`
		VisibleDays           int `yaml:"visible_days"`
		RefreshIntervalSecond int `yaml:"refresh_interval_seconds"`
	} `yaml:"planner"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Planner.BaseCellWidth <= 0 {
		cfg.Planner.BaseCellWidth = 40
	}
	if cfg.Planner.BaseRowHeight <= 0 {
		cfg.Planner.BaseRowHeight = 28
	}
	if cfg.Planner.ZoomPercent <= 0 {
		cfg.Planner.ZoomPercent = 100
	}
	if cfg.Planner.VisibleDays <= 0 {
		cfg.Planner.VisibleDays = 31
	}

	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	if c.Service.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Service.CacheTTLSeconds) * time.Second
}

func (c *Config) WriteRate() (float64, int) {
	if c.Service.WriteRate <= 0 {
		return 5, 10
	}
	burst := c.Service.WriteBurst
	if burst <= 0 {
		burst = int(c.Service.WriteRate) + 1
	}
	return c.Service.WriteRate, burst
}

func (c *Config) RefreshInterval() time.Duration {
	if c.Planner.RefreshIntervalSecond <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Planner.RefreshIntervalSecond) * time.Second
}
