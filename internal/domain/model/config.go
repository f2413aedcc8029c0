package model

import "time"

type TransportKind string

const (
	// TransportRaw writes the request line in two segments; SmartLinc
	// firmware stalls for seconds on single-segment requests from Linux.
	TransportRaw  TransportKind = "raw"
	TransportHTTP TransportKind = "http"
)

type GatewayConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	Transport TransportKind `mapstructure:"transport"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ProtocolConfig struct {
	// Gateway modem address + message flags preceding the status bytes in a reply.
	ReplyInfix string `mapstructure:"reply_infix"`
}

// PollingConfig bounds the retry loops. Zero means unbounded.
type PollingConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	MaxResends        int           `mapstructure:"max_resends"`
	MaxStatusAttempts int           `mapstructure:"max_status_attempts"`
	MaxProgressPolls  int           `mapstructure:"max_progress_polls"`
}

type TranslatorConfig struct {
	// Formula mapping the raw level x (0-255) to Hue brightness for custom devices.
	ToHueFormula string `mapstructure:"to_hue_formula"`
}

type LogFileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type LoggingConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Protocol   ProtocolConfig   `mapstructure:"protocol"`
	Polling    PollingConfig    `mapstructure:"polling"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}
