// Package config loads the process configuration, following the shape of
// the teacher's internal/config package (viper-backed, mapstructure tags,
// sync.Once singleton).
package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// Matcher configures the matching engine's worker pool and channels.
type Matcher struct {
	Workers           int `mapstructure:"workers"`
	OrderChannelSize  int `mapstructure:"order_channel_size"`
	CancelChannelSize int `mapstructure:"cancel_channel_size"`
	MatchChannelSize  int `mapstructure:"match_channel_size"`
	CandidateBatchCap int `mapstructure:"candidate_batch_cap"`
}

// Settlement configures the settlement worker's poll loop.
type Settlement struct {
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	BatchSize      int `mapstructure:"batch_size"`
}

// Coordinator configures the external-session coordinator's transport.
type Coordinator struct {
	ResponseTimeoutMs int    `mapstructure:"response_timeout_ms"`
	PingIntervalMs    int    `mapstructure:"ping_interval_ms"`
	ResizeTimeoutMs   int    `mapstructure:"resize_timeout_ms"`
	EngineURL         string `mapstructure:"engine_url"`
}

// Chain configures the on-chain custody contract client.
type Chain struct {
	ChainID          int64  `mapstructure:"chain_id"`
	EngineWalletKey  string `mapstructure:"engine_wallet_key"`
	RouterAddress    string `mapstructure:"router_address"`
	CustodyAddress   string `mapstructure:"custody_address"`
	SnarkScalarField string `mapstructure:"snark_scalar_field"`
	RPCURL           string `mapstructure:"rpc_url"`
}

// Store configures the durable store's database connection.
type Store struct {
	DSN string `mapstructure:"dsn"`
}

// Notify configures the notification sink's message broker.
type Notify struct {
	NatsURL     string `mapstructure:"nats_url"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// Gateway configures the thin HTTP forwarding surface.
type Gateway struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config is the process-wide configuration, surfacing every option named
// in spec §6.
type Config struct {
	Matcher     Matcher     `mapstructure:"matcher"`
	Settlement  Settlement  `mapstructure:"settlement"`
	Coordinator Coordinator `mapstructure:"coordinator"`
	Chain       Chain       `mapstructure:"chain"`
	Store       Store       `mapstructure:"store"`
	Notify      Notify      `mapstructure:"notify"`
	Gateway     Gateway     `mapstructure:"gateway"`
}

var (
	instance *Config
	once     sync.Once
)

// Load reads configuration from configPath (a directory) layered over
// defaults and the DARKPOOL_* environment, exactly once per process.
func Load(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		instance = &Config{}
		setDefaults(instance)

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/darkpoolcore")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("DARKPOOL")

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(instance); unmarshalErr != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
			return
		}
	})

	return instance, err
}

// Get returns the already-loaded singleton, loading with defaults if no
// prior Load call occurred.
func Get() *Config {
	if instance == nil {
		cfg, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		return cfg
	}
	return instance
}

func setDefaults(c *Config) {
	c.Matcher.Workers = 4
	c.Matcher.OrderChannelSize = 1024
	c.Matcher.CancelChannelSize = 256
	c.Matcher.MatchChannelSize = 1024
	c.Matcher.CandidateBatchCap = 100

	c.Settlement.PollIntervalMs = 2000
	c.Settlement.BatchSize = 10

	c.Coordinator.ResponseTimeoutMs = 10000
	c.Coordinator.PingIntervalMs = 30000
	c.Coordinator.ResizeTimeoutMs = 15000

	c.Chain.SnarkScalarField = "21888242871839275222246405745257275088548364400416034343698204186575808495617"

	c.Notify.TopicPrefix = "darkpool."

	c.Gateway.Host = "0.0.0.0"
	c.Gateway.Port = 8080
}
