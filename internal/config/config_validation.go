package config

import "time"

// Defaults applied by validate for worker settings left unset.
const (
	defaultVaultIdleTTL  = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup, and fills in
// defaults for optional worker settings.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.PasswordSalt == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Workers.VaultIdleTTL == 0 {
		cfg.Workers.VaultIdleTTL = defaultVaultIdleTTL
	}
	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = defaultSweepInterval
	}

	return nil
}
