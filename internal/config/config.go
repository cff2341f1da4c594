package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"

	"tg-agegate/internal/duration"
)

// global configuration structure
type Config struct {
	Bot          BotConfig          `mapstructure:"bot"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Policy       PolicyConfig       `mapstructure:"policy"`
	Notification NotificationConfig `mapstructure:"notification"`
	Database     DatabaseConfig     `mapstructure:"database"`
}

// Telegram bot configuration
type BotConfig struct {
	Token   string        `mapstructure:"token"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration
type WebhookConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ListenPort string `mapstructure:"listen_port"`
	DebugPath  string `mapstructure:"debug_path"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// default admission thresholds, as duration strings ("7d", "12h", ...)
type PolicyConfig struct {
	BanUnder  string `mapstructure:"ban_under"`
	KickUnder string `mapstructure:"kick_under"`

	// parsed forms, filled in by Load
	BanUnderSeconds  int64 `mapstructure:"-"`
	KickUnderSeconds int64 `mapstructure:"-"`
}

// audit / escalation channel settings
type NotificationConfig struct {
	// Fallback channel used only until an operator persists one via /set_log.
	LogChannelID int64 `mapstructure:"log_channel_id"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.BindEnv("notification.log_channel_id", "LOG_CHANNEL_ID")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	var err error
	if cfg.Policy.BanUnderSeconds, err = duration.ParseSeconds(cfg.Policy.BanUnder); err != nil {
		return nil, fmt.Errorf("invalid policy.ban_under: %w", err)
	}
	if cfg.Policy.KickUnderSeconds, err = duration.ParseSeconds(cfg.Policy.KickUnder); err != nil {
		return nil, fmt.Errorf("invalid policy.kick_under: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.debug_path", "/debug")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.enabled", false)

	v.SetDefault("policy.ban_under", "7d")
	v.SetDefault("policy.kick_under", "30d")

	v.SetDefault("notification.log_channel_id", 0)
}
