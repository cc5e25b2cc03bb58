package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d database DSN
//	-c/-config json file path with configs
//	-password-salt server-wide password salt
//	-hash-key HMAC message signing key
//	-vault-idle-ttl idle time before a session vault is destroyed (e.g., "30m")
//	-sweep-interval session sweeper period (e.g., "1m")
func ParseFlags() *StructuredConfig {
	var databaseDSN string
	var jsonConfigPath string
	var passwordSalt string
	var hashKey string
	var vaultIdleTTL time.Duration
	var sweepInterval time.Duration

	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&passwordSalt, "password-salt", "", "Server-wide password salt")
	flag.StringVar(&hashKey, "hash-key", "", "Message signing key")
	flag.DurationVar(&vaultIdleTTL, "vault-idle-ttl", 0, "Idle time before a session vault is destroyed (e.g., 30m)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Session sweeper period (e.g., 1m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			PasswordSalt: passwordSalt,
			HashKey:      hashKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Workers: Workers{
			VaultIdleTTL:  vaultIdleTTL,
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
