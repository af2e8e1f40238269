// Package config loads vaultd configuration from defaults, an optional
// YAML file, and VAULTD_ environment variables, in that order.
package config

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/blockberries/vault/types"
)

// Codespace is the error namespace of the config package.
const Codespace = "config"

var ErrInvalidConfig = errorsmod.Register(Codespace, 1500, "invalid configuration")

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: VAULTD_STORE__PATH sets store.path.
const EnvPrefix = "VAULTD_"

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Listen    string      `koanf:"listen"`
	ProgramID string      `koanf:"program_id"`
	Store     StoreConfig `koanf:"store"`
	Log       LogConfig   `koanf:"log"`
}

type StoreConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Default returns the configuration used when nothing overrides it.
// It has no program ID and so does not validate on its own.
func Default() Config {
	return Config{
		Listen: "127.0.0.1:7450",
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   "vault.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply. The result is validated.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errorsmod.Wrap(err, "load defaults")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errorsmod.Wrapf(err, "load %s", path)
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, errorsmod.Wrap(err, "load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errorsmod.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values vaultd cannot run with.
func (c Config) Validate() error {
	if c.Listen == "" {
		return ErrInvalidConfig.Wrap("listen address is empty")
	}
	if _, err := c.Program(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return ErrInvalidConfig.Wrap("sqlite store requires a path")
		}
	default:
		return ErrInvalidConfig.Wrapf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Program returns the parsed program ID.
func (c Config) Program() (solana.PublicKey, error) {
	if c.ProgramID == "" {
		return solana.PublicKey{}, ErrInvalidConfig.Wrap("program_id is required")
	}
	k, err := types.ParseKey(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidConfig.Wrapf("program_id: %v", err)
	}
	return k, nil
}
