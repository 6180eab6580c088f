package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	FRED struct {
		BaseURL    string            `yaml:"base_url"`
		Series     map[string]string `yaml:"series"` // FRED id -> internal series name
		StartDate  string            `yaml:"start_date"`
		Timeout    time.Duration     `yaml:"timeout"`
		RetryMax   int               `yaml:"retry_max"`
		BackoffMin time.Duration     `yaml:"backoff_min"`
		BackoffMax time.Duration     `yaml:"backoff_max"`
	} `yaml:"fred"`
	Features struct {
		LagDays   int `yaml:"lag_days"`
		Days1M    int `yaml:"days_1m"`
		Days1Y    int `yaml:"days_1y"`
		FillLimit int `yaml:"fill_limit"`
	} `yaml:"features"`
	Regime struct {
		MinRunLength int `yaml:"min_run_length"`
		Thresholds   struct {
			RateMove       float64 `yaml:"rate_move"`
			CreditWiden    float64 `yaml:"credit_widen"`
			CreditStable   float64 `yaml:"credit_stable"`
			VolCalm        float64 `yaml:"vol_calm"`
			VolElevated    float64 `yaml:"vol_elevated"`
			VolSpike       float64 `yaml:"vol_spike"`
			CreditZWiden   float64 `yaml:"credit_z_widen"`
			CreditZExtreme float64 `yaml:"credit_z_extreme"`
			StressAlert    float64 `yaml:"stress_alert"`
			StressForce    float64 `yaml:"stress_force"`
		} `yaml:"thresholds"`
	} `yaml:"regime"`
	Report struct {
		RefreshInterval time.Duration  `yaml:"refresh_interval"`
		CacheTTL        time.Duration  `yaml:"cache_ttl"`
		ScoreThresholds []int          `yaml:"score_thresholds"`
		StressWindows   []StressWindow `yaml:"stress_windows"`
	} `yaml:"report"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// StressWindow names a historical stress episode scored in the report.
type StressWindow struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("FRED_BASE_URL"); v != "" {
		c.FRED.BaseURL = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.FRED.Series) == 0 {
		return fmt.Errorf("fred.series cannot be empty")
	}
	if c.Regime.MinRunLength < 1 {
		return fmt.Errorf("regime.min_run_length must be >= 1, got %d", c.Regime.MinRunLength)
	}
	if c.Features.Days1Y > 0 && c.Features.Days1M > c.Features.Days1Y {
		return fmt.Errorf("features.days_1m cannot exceed features.days_1y")
	}
	for i := 1; i < len(c.Report.ScoreThresholds); i++ {
		if c.Report.ScoreThresholds[i] <= c.Report.ScoreThresholds[i-1] {
			return fmt.Errorf("report.score_thresholds must be strictly increasing")
		}
	}
	for _, w := range c.Report.StressWindows {
		if w.Name == "" || w.Start == "" || w.End == "" {
			return fmt.Errorf("report.stress_windows entries need name, start and end")
		}
		if w.Start > w.End {
			return fmt.Errorf("stress window %q: start is after end", w.Name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
