package redisstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/itemstore/internal/timex"
)

// Config holds connection settings for the backing Redis deployment.
//
// Fields:
//   - Addrs: one address for a single node, several for a cluster.
//   - Username / Password: ACL credentials, empty for none.
//   - DB: logical database, single node only.
//   - DialTimeout / ReadTimeout / WriteTimeout: per-connection timeouts.
//   - PoolSize: connections per node, 0 lets go-redis choose.
//   - MaxRetries: command retries; -1, the default, disables them.
//   - ClientName: sent with CLIENT SETNAME on every connection.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MaxRetries   int
	ClientName   string
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.Addrs = []string{"localhost:6379"}
	c.Username = ""
	c.Password = ""
	c.DB = 0
	c.DialTimeout = 5 * time.Second
	c.ReadTimeout = 3 * time.Second
	c.WriteTimeout = 3 * time.Second
	c.PoolSize = 0
	c.MaxRetries = -1
	c.ClientName = "itemstore"
}

// JsonConfig is the on-disk form of Config. Durations accept "1s" or
// integer nanoseconds. Absent fields keep their defaults.
type JsonConfig struct {
	Addrs        []string        `json:"addrs"`
	Username     *string         `json:"username"`
	Password     *string         `json:"password"`
	DB           *int            `json:"db"`
	DialTimeout  *timex.Duration `json:"dial_timeout"`
	ReadTimeout  *timex.Duration `json:"read_timeout"`
	WriteTimeout *timex.Duration `json:"write_timeout"`
	PoolSize     *int            `json:"pool_size"`
	MaxRetries   *int            `json:"max_retries"`
	ClientName   *string         `json:"client_name"`
}

// LoadConfig applies defaults and then overlays the JSON file at path.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(file, &jc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return cfg, nil
}

func (jc *JsonConfig) apply(c *Config) {
	if len(jc.Addrs) > 0 {
		c.Addrs = jc.Addrs
	}
	if jc.Username != nil {
		c.Username = *jc.Username
	}
	if jc.Password != nil {
		c.Password = *jc.Password
	}
	if jc.DB != nil {
		c.DB = *jc.DB
	}
	if jc.DialTimeout != nil {
		c.DialTimeout = jc.DialTimeout.Duration
	}
	if jc.ReadTimeout != nil {
		c.ReadTimeout = jc.ReadTimeout.Duration
	}
	if jc.WriteTimeout != nil {
		c.WriteTimeout = jc.WriteTimeout.Duration
	}
	if jc.PoolSize != nil {
		c.PoolSize = *jc.PoolSize
	}
	if jc.MaxRetries != nil {
		c.MaxRetries = *jc.MaxRetries
	}
	if jc.ClientName != nil {
		c.ClientName = *jc.ClientName
	}
}

// UniversalOptions converts the config to go-redis options.
func (c *Config) UniversalOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:        c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolSize:     c.PoolSize,
		MaxRetries:   c.MaxRetries,
		ClientName:   c.ClientName,
	}
}

// NewClient builds a single-node client for one address and a cluster
// client for several.
func NewClient(c *Config) redis.UniversalClient {
	return redis.NewUniversalClient(c.UniversalOptions())
}
