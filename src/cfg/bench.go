package cfg

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// BenchConfig holds the workload parameters of the page-access simulation.
type BenchConfig struct {
	BucketSize int    `mapstructure:"BUCKET_SIZE"`
	NumFrames  uint64 `mapstructure:"NUM_FRAMES"`
	K          uint64 `mapstructure:"K"`

	Workers    int    `mapstructure:"WORKERS"`
	Operations int    `mapstructure:"OPERATIONS"`
	KeySpace   uint64 `mapstructure:"KEY_SPACE"`
	Seed       uint64 `mapstructure:"SEED"`
}

func LoadConfig(path string) (BenchConfig, error) {
	viper.AddConfigPath(path)
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.SetEnvPrefix("POOLKIT")
	viper.AutomaticEnv()

	viper.SetOptions(viper.ExperimentalBindStruct())

	viper.SetDefault("BUCKET_SIZE", 8)
	viper.SetDefault("NUM_FRAMES", 1024)
	viper.SetDefault("K", 2)
	viper.SetDefault("WORKERS", 4)
	viper.SetDefault("OPERATIONS", 100000)
	viper.SetDefault("KEY_SPACE", 8192)
	viper.SetDefault("SEED", 42)

	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("config file not found, using env vars")
	}

	var cfg BenchConfig

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return BenchConfig{}, fmt.Errorf("viper unmarshaling config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return BenchConfig{}, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c BenchConfig) Validate() error {
	if c.BucketSize < 1 {
		return errors.New("bucket size must be at least 1")
	}
	if c.NumFrames < 1 {
		return errors.New("number of frames must be at least 1")
	}
	if c.K < 1 {
		return errors.New("k must be at least 1")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Operations < 1 {
		return errors.New("operations must be at least 1")
	}
	if c.KeySpace < 2 {
		return errors.New("key space must be at least 2")
	}

	return nil
}
