package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/pairflow/pairflow-router-go/engine"
)

// Config is the YAML configuration of the quoter binary. Addresses and
// hashes are plain hex strings in the file and converted when building the
// engine context.
type Config struct {
	RPCURL        string `yaml:"rpcUrl"`
	Factory       string `yaml:"factory"`
	PairCodeHash  string `yaml:"pairCodeHash"`
	WrappedNative string `yaml:"wrappedNative"`
	FeeBps        uint16 `yaml:"feeBps"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.FeeBps == 0 {
		cfg.FeeBps = engine.DefaultFeeBps
	}
	return &cfg, nil
}

// EngineContext converts the file representation into the validated
// immutable context the router runs against.
func (c *Config) EngineContext() (engine.Context, error) {
	env := engine.Context{
		Factory:       common.HexToAddress(c.Factory),
		PairCodeHash:  common.HexToHash(c.PairCodeHash),
		WrappedNative: common.HexToAddress(c.WrappedNative),
		FeeBps:        c.FeeBps,
	}
	if err := env.Validate(); err != nil {
		return engine.Context{}, err
	}
	return env, nil
}
