package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	storeBackendVar    = "SESSION_STORE"
	storePathVar       = "SESSION_STORE_PATH"
	storePassphraseVar = "SESSION_STORE_PASSPHRASE"
	redisAddrVar       = "REDIS_ADDR"
	redisPrefixVar     = "REDIS_PREFIX"
	redisTTLVar        = "REDIS_SESSION_TTL"
)

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	GetStorePassphrase() string
	GetRedisAddr() string
	GetRedisPrefix() string
	GetRedisSessionTTL() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() string {
	return GetEnv(storeBackendVar, StoreBackendFile)
}

func (Store) GetStorePath() string {
	if p := os.Getenv(storePathVar); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ttb-session.json"
	}
	return filepath.Join(dir, "ttb-portal", "session.json")
}

// GetStorePassphrase returns the passphrase used to seal the session file. Empty disables
// encryption.
func (Store) GetStorePassphrase() string {
	return os.Getenv(storePassphraseVar)
}

func (Store) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Store) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "ttb")
}

func (Store) GetRedisSessionTTL() time.Duration {
	return getEnvDuration(redisTTLVar, 0)
}
