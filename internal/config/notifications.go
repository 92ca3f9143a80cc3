package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// NotificationConfig carries the payment-reminder defaults applied when the
// pricing configuration is first seeded.
type NotificationConfig struct {
	PaymentDueDay    int
	ReminderLeadDays int
	Enabled          bool
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		PaymentDueDay:    10,
		ReminderLeadDays: 3,
		Enabled:          true,
	}
}

type NotificationConfigHolder struct {
	current atomic.Value // holds NotificationConfig
}

func NewNotificationConfigHolder() (*NotificationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("notifications")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/aulapay/config") // Volume-mounted config
	v.AddConfigPath("/etc/aulapay")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("AULAPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults also backfill keys a partial config file omits.
	defaults := DefaultNotificationConfig()
	v.SetDefault("notifications.paymentDueDay", defaults.PaymentDueDay)
	v.SetDefault("notifications.reminderLeadDays", defaults.ReminderLeadDays)
	v.SetDefault("notifications.enabled", defaults.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := readNotificationConfig(v)
	if err := validateNotificationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &NotificationConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readNotificationConfig(v)
		if err := validateNotificationConfig(updated); err != nil {
			log.Printf("[notification-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[notification-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *NotificationConfigHolder) Get() NotificationConfig {
	return h.current.Load().(NotificationConfig)
}

// readNotificationConfig reads keys one at a time so that registered
// defaults backfill any key a partial config file omits.
func readNotificationConfig(v *viper.Viper) NotificationConfig {
	return NotificationConfig{
		PaymentDueDay:    v.GetInt("notifications.paymentDueDay"),
		ReminderLeadDays: v.GetInt("notifications.reminderLeadDays"),
		Enabled:          v.GetBool("notifications.enabled"),
	}
}

func validateNotificationConfig(cfg NotificationConfig) error {
	if cfg.PaymentDueDay < 1 || cfg.PaymentDueDay > 31 {
		return errors.New("notifications.paymentDueDay must be between 1 and 31")
	}
	if cfg.ReminderLeadDays < 0 || cfg.ReminderLeadDays > 30 {
		return errors.New("notifications.reminderLeadDays must be between 0 and 30")
	}
	return nil
}
