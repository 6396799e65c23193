package redis

import "time"

// Config describes a Redis connection for the Redis cache backend.
// Zero-valued fields fall back to the defaults noted on each field.
type Config struct {
	// Connection URL (redis:// or rediss:// for TLS).
	URL string `env:"APC_REDIS_URL,required" yaml:"url"`

	// Pool sizing. Default 10 connections, 5 kept idle.
	PoolSize     int `env:"APC_REDIS_POOL_SIZE" envDefault:"10" yaml:"pool_size"`
	MinIdleConns int `env:"APC_REDIS_MIN_IDLE_CONNS" envDefault:"5" yaml:"min_idle_conns"`

	// Connection recycling. Default 10m idle, 30m lifetime.
	MaxIdleTime   time.Duration `env:"APC_REDIS_MAX_IDLE_TIME" envDefault:"10m" yaml:"max_idle_time"`
	MaxActiveTime time.Duration `env:"APC_REDIS_MAX_ACTIVE_TIME" envDefault:"30m" yaml:"max_active_time"`

	// Startup retries with linear backoff. Default 3 attempts, 5s base interval.
	RetryAttempts int           `env:"APC_REDIS_RETRY_ATTEMPTS" envDefault:"3" yaml:"retry_attempts"`
	RetryInterval time.Duration `env:"APC_REDIS_RETRY_INTERVAL" envDefault:"5s" yaml:"retry_interval"`

	// Per-operation timeouts. Default 3s read/write, 5s dial.
	ReadTimeout  time.Duration `env:"APC_REDIS_READ_TIMEOUT" envDefault:"3s" yaml:"read_timeout"`
	WriteTimeout time.Duration `env:"APC_REDIS_WRITE_TIMEOUT" envDefault:"3s" yaml:"write_timeout"`
	DialTimeout  time.Duration `env:"APC_REDIS_DIAL_TIMEOUT" envDefault:"5s" yaml:"dial_timeout"`
}

// withDefaults returns a copy of cfg with zero values replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = 5
	}
	if cfg.MaxIdleTime <= 0 {
		cfg.MaxIdleTime = 10 * time.Minute
	}
	if cfg.MaxActiveTime <= 0 {
		cfg.MaxActiveTime = 30 * time.Minute
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	return cfg
}
