// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Vigenere    VigenereConfig    `toml:"vigenere"`
	ManyTimePad ManyTimePadConfig `toml:"many-time-pad"`
	History     HistoryConfig     `toml:"history"`
}

// VigenereConfig maps Vigenère cracking settings.
type VigenereConfig struct {
	MaxKeyLength *int `toml:"max-key-length"`
}

// ManyTimePadConfig maps many-time-pad settings.
type ManyTimePadConfig struct {
	SpaceThreshold *float64 `toml:"space-threshold"`
	Mask           *string  `toml:"mask"`
	Cribs          *string  `toml:"cribs"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Enabled *bool   `toml:"enabled"`
	DBPath  *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if v := c.Vigenere.MaxKeyLength; v != nil && *v < 2 {
		return fmt.Errorf("vigenere.max-key-length must be at least 2, got %d", *v)
	}
	if v := c.ManyTimePad.SpaceThreshold; v != nil && *v <= 0 {
		return fmt.Errorf("many-time-pad.space-threshold must be positive, got %g", *v)
	}
	if v := c.ManyTimePad.Mask; v != nil && len(*v) != 1 {
		return fmt.Errorf("many-time-pad.mask must be a single byte, got %q", *v)
	}
	return nil
}

// Template is written by the config command when no file exists yet.
const Template = `# cryptology configuration

[vigenere]
# Largest key length tried when the key length is unknown.
# max-key-length = 20

[many-time-pad]
# Votes a space needs over the next candidate before it is accepted.
# space-threshold = 1.7
# Byte shown for plaintext whose key byte could not be recovered.
# Leave unset to print the raw XOR.
# mask = "_"
# Crib file, one crib per line, for the crib sweep.
# cribs = "~/.config/cryptology/cribs.txt"

[history]
# Record every run in the history database.
# enabled = true
# db = "~/.local/share/cryptology/history.db"
`
