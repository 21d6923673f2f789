package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// POSConfig holds register-level defaults applied when a sale request omits
// them. Reloaded at runtime when the config file changes.
type POSConfig struct {
	DefaultTaxRate float64 `mapstructure:"defaultTaxRate"`
	Currency       string  `mapstructure:"currency"`
	ReceiptFooter  string  `mapstructure:"receiptFooter"`
}

func DefaultPOSConfig() POSConfig {
	return POSConfig{
		DefaultTaxRate: 0,
		Currency:       "USD",
		ReceiptFooter:  "Thank you for your business",
	}
}

type POSConfigHolder struct {
	current atomic.Value // holds POSConfig
}

func NewPOSConfigHolder(log *zap.Logger) (*POSConfigHolder, error) {
	log = log.Named("pos.config")
	v := viper.New()

	v.SetConfigName("pos")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tillpos/config")
	v.AddConfigPath("/etc/tillpos")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TILLPOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPOSConfig()
		v.SetDefault("pos.defaultTaxRate", defaults.DefaultTaxRate)
		v.SetDefault("pos.currency", defaults.Currency)
		v.SetDefault("pos.receiptFooter", defaults.ReceiptFooter)
	}

	var cfg POSConfig
	if err := v.UnmarshalKey("pos", &cfg); err != nil {
		return nil, err
	}
	if err := validatePOSConfig(cfg); err != nil {
		return nil, err
	}

	holder := &POSConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated POSConfig
		if err := v.UnmarshalKey("pos", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validatePOSConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticPOSConfigHolder returns a holder pinned to cfg with no file
// watching. Used by tests and one-shot tools.
func NewStaticPOSConfigHolder(cfg POSConfig) *POSConfigHolder {
	holder := &POSConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *POSConfigHolder) Get() POSConfig {
	return h.current.Load().(POSConfig)
}

func validatePOSConfig(cfg POSConfig) error {
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate >= 1 {
		return errors.New("pos.defaultTaxRate must be in [0, 1)")
	}
	return nil
}
