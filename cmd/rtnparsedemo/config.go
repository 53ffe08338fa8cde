package main

import "github.com/BurntSushi/toml"

// Config is the optional on-disk configuration for rtnparsedemo,
// loaded with --config. Flags given on the command line always win
// over a value loaded here.
type Config struct {
	// Grammar names the built-in fixture grammar to parse with:
	// "parens", "arith", or "disambig".
	Grammar string `toml:"grammar"`

	// ListenAddress is the default bind address for --serve.
	ListenAddress string `toml:"listen_address"`

	// MaxStackDepth overrides engine.DefaultMaxStackDepth when set.
	MaxStackDepth int `toml:"max_stack_depth"`
}

// loadConfig decodes a TOML config file at path.
func loadConfig(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
