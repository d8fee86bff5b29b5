package fit

import "github.com/BurntSushi/toml"

// Config is the optional TOML-configurable tuning the fitdump CLI loads via
// --config (spec §1.1 "ambient configuration"). It is not required for
// programmatic use of Open/Decoder: every setting in DefaultConfig has the
// same value Open uses when no Option is given.
type Config struct {
	// VerifyCRC mirrors WithVerifyCRC.
	VerifyCRC bool `toml:"verify_crc"`
}

// DefaultConfig returns the configuration a Decoder uses when no --config
// file is given.
func DefaultConfig() Config {
	return Config{VerifyCRC: true}
}

// LoadConfig reads and decodes a TOML config file, starting from
// DefaultConfig so an absent key keeps its default rather than zeroing out.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options turns cfg into Decoder Options.
func (cfg Config) Options() []Option {
	return []Option{WithVerifyCRC(cfg.VerifyCRC)}
}
