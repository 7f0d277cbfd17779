// Package config loads the geometry and backing-store settings cmd/eeprom
// runs with. zhukovaskychina-xmysql-server configures its storage engine
// via github.com/pelletier/go-toml; this package follows that precedent for
// the same concern here, falling back to spec.md §3's canonical defaults
// (32-byte pages, 4096-byte blocks, 65536-byte flash, 2 emulation blocks)
// when no config file is supplied.
package config

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/chanceme/emueeprom/flash"
)

// Config is the on-disk configuration for cmd/eeprom.
type Config struct {
	PageSize   int    `toml:"page_size"`
	BlockSize  int    `toml:"block_size"`
	FlashSize  int    `toml:"flash_size"`
	BlockTotal int    `toml:"block_total"`     // blocks the emulation engine rotates across (spec.md §3, canonical 2)
	BackingDev string `toml:"backing_device"` // "memory" or a file path
}

// Default returns the canonical spec.md §3 geometry with an in-memory
// backing device.
func Default() Config {
	return Config{
		PageSize:   flash.DefaultGeometry.PageSize,
		BlockSize:  flash.DefaultGeometry.BlockSize,
		FlashSize:  flash.DefaultGeometry.FlashSize,
		BlockTotal: flash.DefaultGeometry.BlockTotal,
		BackingDev: "memory",
	}
}

// Load reads a TOML config file at path, overlaying it onto Default().
func Load(path string) (Config, error) {
	cfg := Default()

	tree, err := toml.LoadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: load %s", path)
	}
	if err := tree.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Geometry converts cfg into a flash.Geometry.
func (c Config) Geometry() flash.Geometry {
	return flash.Geometry{
		PageSize:   c.PageSize,
		BlockSize:  c.BlockSize,
		FlashSize:  c.FlashSize,
		BlockTotal: c.BlockTotal,
	}
}
