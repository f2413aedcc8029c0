package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"smartlinc-bridge/internal/domain/model"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const envPrefix = "SMARTLINC"

// ViperConfigRepository loads the config from a YAML/TOML/JSON file, defaults
// and SMARTLINC_* environment variables. A missing file is not an error.
type ViperConfigRepository struct {
	path string
	mu   sync.RWMutex
}

// NewViperConfigRepository reads path, or $SMARTLINC_CONFIG, or smartlinc.yaml
// from . or ./configs when both are empty.
func NewViperConfigRepository(path string) *ViperConfigRepository {
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	return &ViperConfigRepository{path: path}
}

func (r *ViperConfigRepository) Get(ctx context.Context) (*model.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := r.newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the repository path, smartlinc.yaml when none is set.
func (r *ViperConfigRepository) Save(ctx context.Context, config *model.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path
	if path == "" {
		path = "smartlinc.yaml"
	}

	v := viper.New()
	for key, value := range flatten(config) {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (r *ViperConfigRepository) newViper() *viper.Viper {
	v := viper.New()
	if r.path != "" {
		v.SetConfigFile(r.path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("smartlinc")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.host", "")
	v.SetDefault("gateway.port", 80)
	v.SetDefault("gateway.username", "")
	v.SetDefault("gateway.password", "")
	v.SetDefault("gateway.transport", string(model.TransportRaw))
	v.SetDefault("gateway.timeout", "10s")

	v.SetDefault("protocol.reply_infix", "")

	v.SetDefault("polling.interval", "1s")
	v.SetDefault("polling.max_resends", 20)
	v.SetDefault("polling.max_status_attempts", 30)
	v.SetDefault("polling.max_progress_polls", 60)

	v.SetDefault("translator.to_hue_formula", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.max_size", 10)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 30)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("metrics.path", "/metrics")
}

func flatten(c *model.Config) map[string]interface{} {
	return map[string]interface{}{
		"gateway.host":      c.Gateway.Host,
		"gateway.port":      c.Gateway.Port,
		"gateway.username":  c.Gateway.Username,
		"gateway.password":  c.Gateway.Password,
		"gateway.transport": string(c.Gateway.Transport),
		"gateway.timeout":   c.Gateway.Timeout.String(),

		"protocol.reply_infix": c.Protocol.ReplyInfix,

		"polling.interval":            c.Polling.Interval.String(),
		"polling.max_resends":         c.Polling.MaxResends,
		"polling.max_status_attempts": c.Polling.MaxStatusAttempts,
		"polling.max_progress_polls":  c.Polling.MaxProgressPolls,

		"translator.to_hue_formula": c.Translator.ToHueFormula,

		"logging.level":            c.Logging.Level,
		"logging.format":           c.Logging.Format,
		"logging.file.filename":    c.Logging.File.Filename,
		"logging.file.max_size":    c.Logging.File.MaxSizeMB,
		"logging.file.max_backups": c.Logging.File.MaxBackups,
		"logging.file.max_age":     c.Logging.File.MaxAgeDays,
		"logging.file.compress":    c.Logging.File.Compress,

		"server.addr":  c.Server.Addr,
		"metrics.path": c.Metrics.Path,
	}
}
