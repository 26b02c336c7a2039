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
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Feed struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		Channel        string        `yaml:"channel"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
	Pipeline struct {
		MaxRPS     int `yaml:"max_rps"`
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"pipeline"`
	Prediction struct {
		HorizonTicks      int           `yaml:"horizon_ticks"`
		BaseHazardRate    float64       `yaml:"base_hazard_rate"`
		TargetCoverage    float64       `yaml:"target_coverage"`
		CalibrationWindow int           `yaml:"calibration_window"`
		ErrorWindow       int           `yaml:"error_window"`
		QuantileAdjust    *bool         `yaml:"quantile_adjust"`
		BetWindowTicks    int           `yaml:"bet_window_ticks"`
		BetCooldownTicks  int           `yaml:"bet_cooldown_ticks"`
		BetThreshold      float64       `yaml:"bet_threshold"`
		PayoutMultiplier  float64       `yaml:"payout_multiplier"`
		QuantileDeadZone  float64       `yaml:"quantile_dead_zone"`
		QuantileAlpha     float64       `yaml:"quantile_alpha"`
		RegimeRatio       float64       `yaml:"regime_ratio"`
		RegimeSustain     int           `yaml:"regime_sustain"`
		RegimeHazardScale float64       `yaml:"regime_hazard_scale"`
		RegimeDecayTau    float64       `yaml:"regime_decay_tau"`
		DriftLambda       float64       `yaml:"drift_lambda"`
		FeatureBudget     time.Duration `yaml:"feature_budget"`
	} `yaml:"prediction"`
	ShortRound struct {
		Mode              string        `yaml:"mode"` // linear or remote
		ServiceURL        string        `yaml:"service_url"`
		Timeout           time.Duration `yaml:"timeout"`
		Threshold         float64       `yaml:"threshold"`
		Ceiling           int           `yaml:"ceiling"`
		ConfidencePenalty float64       `yaml:"confidence_penalty"`
		EarlyWindow       int           `yaml:"early_window"`
	} `yaml:"short_round"`
	Kafka struct {
		Brokers          []string `yaml:"brokers"`
		PredictionsTopic string   `yaml:"predictions_topic"`
		EventsTopic      string   `yaml:"events_topic"`
		LogsTopic        string   `yaml:"logs_topic"`
		RequiredAcks     int      `yaml:"required_acks"`
		Compression      string   `yaml:"compression"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Archive struct {
		Workers    int           `yaml:"workers"`
		QueueSize  int           `yaml:"queue_size"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"archive"`
	History struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"history"`
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
	if v := os.Getenv("FEED_WS_URL"); v != "" {
		c.Feed.WebSocketURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_PREDICTIONS_TOPIC"); v != "" {
		c.Kafka.PredictionsTopic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SHORT_ROUND_SERVICE_URL"); v != "" {
		c.ShortRound.ServiceURL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.websocket_url is required")
	}
	if tc := c.Prediction.TargetCoverage; tc != 0 && (tc <= 0 || tc >= 1) {
		return fmt.Errorf("prediction.target_coverage must be in (0,1), got %v", tc)
	}
	if bt := c.Prediction.BetThreshold; bt != 0 && (bt <= 0 || bt >= 1) {
		return fmt.Errorf("prediction.bet_threshold must be in (0,1), got %v", bt)
	}
	if c.Prediction.BetWindowTicks < 0 || c.Prediction.HorizonTicks < 0 {
		return fmt.Errorf("prediction tick windows must be non-negative")
	}
	if m := c.ShortRound.Mode; m != "" && m != "linear" && m != "remote" {
		return fmt.Errorf("short_round.mode must be 'linear' or 'remote', got '%s'", m)
	}
	if c.ShortRound.Mode == "remote" && c.ShortRound.ServiceURL == "" {
		return fmt.Errorf("short_round.service_url is required in remote mode")
	}
	return nil
}
