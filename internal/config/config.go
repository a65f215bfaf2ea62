package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Realtime struct {
		SendBufferSize   int  `yaml:"send_buffer_size"`  // per-session outbound queue
		PingIntervalSec  int  `yaml:"ping_interval_sec"` // websocket keepalive
		ReadTimeoutSec   int  `yaml:"read_timeout_sec"`  // pong deadline
		RetentionDays    int  `yaml:"retention_days"`    // terminal notification cleanup
		EscalateCritical bool `yaml:"escalate_critical"` // email fallback for CRITICAL
	} `yaml:"realtime"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyRealtimeDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Environment-variable mode, used by the test suite.
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "noreply@storefront.test"
	cfg.Email.FromName = "Storefront Admin"

	applyRealtimeDefaults(&cfg)
	AppConfig = &cfg
}

func applyRealtimeDefaults(cfg *Config) {
	if cfg.Realtime.SendBufferSize <= 0 {
		cfg.Realtime.SendBufferSize = 64
	}
	if cfg.Realtime.PingIntervalSec <= 0 {
		cfg.Realtime.PingIntervalSec = 30
	}
	if cfg.Realtime.ReadTimeoutSec <= 0 {
		cfg.Realtime.ReadTimeoutSec = 60
	}
	if cfg.Realtime.RetentionDays <= 0 {
		cfg.Realtime.RetentionDays = 90
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
