package notify

import (
	"context"

	"github.com/phrazzld/workboard-api/internal/config"
	"github.com/phrazzld/workboard-api/internal/domain"
)

// SettingsSource provides the current mail transport settings.
// store.MailSettingsStore satisfies it.
type SettingsSource interface {
	Get(ctx context.Context) (domain.MailSettings, error)
}

// StaticSettings is a SettingsSource that always returns the same settings.
type StaticSettings domain.MailSettings

// Get implements SettingsSource.
func (s StaticSettings) Get(ctx context.Context) (domain.MailSettings, error) {
	return domain.MailSettings(s), nil
}

// SettingsFromConfig builds static settings from the mail configuration.
func SettingsFromConfig(cfg config.MailConfig) StaticSettings {
	return StaticSettings{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Secure:      cfg.Secure,
		Username:    cfg.Username,
		Password:    cfg.Password,
		FromName:    cfg.FromName,
		FromAddress: cfg.FromAddress,
	}
}
