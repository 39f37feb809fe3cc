package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

type NovaPoolConfig struct {
	AppName string `mapstructure:"app_name"`

	Pool struct {
		Capacity int    `mapstructure:"capacity"`
		Replacer string `mapstructure:"replacer"` // "lru" or "clock"
	} `mapstructure:"pool"`

	Storage struct {
		Mode            string `mapstructure:"mode"` // "file" or "memory"
		Workdir         string `mapstructure:"workdir"`
		Base            string `mapstructure:"base"`
		MaxOpenSegments int    `mapstructure:"max_open_segments"`
	} `mapstructure:"storage"`

	WAL struct {
		Enabled bool   `mapstructure:"enabled"`
		Dir     string `mapstructure:"dir"`
	} `mapstructure:"wal"`
}

func LoadConfig(path string) (*NovaPoolConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("pool.capacity", 128)
	v.SetDefault("pool.replacer", "lru")
	v.SetDefault("storage.mode", "file")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("storage.base", "pages")
	v.SetDefault("storage.max_open_segments", 8)
	v.SetDefault("wal.dir", "./data/wal")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg NovaPoolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
