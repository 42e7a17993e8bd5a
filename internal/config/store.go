package config

import (
	"fmt"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Store struct {
	Driver          string        `env:"STORE_DRIVER" envDefault:"memory"`
	DSN             string        `env:"DATABASE_URL" json:"-"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"drivecalc.db"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD" json:"-"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	TTL             time.Duration `env:"STORE_TTL" envDefault:"720h"`
	SaveTimeout     time.Duration `env:"SAVE_TIMEOUT" envDefault:"2s"`
	IdleSessions    time.Duration `env:"SESSION_IDLE" envDefault:"30m"`
}

func (s Store) validate() error {
	switch s.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
		return nil
	case DriverPostgres:
		if s.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		return nil
	}
	return fmt.Errorf("unknown STORE_DRIVER %q", s.Driver)
}
