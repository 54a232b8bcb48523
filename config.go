package heritage

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config controls one composition.
type Config struct {
	// Register records the source in the host's extension set and installs
	// the instanceof and super members.
	Register bool `toml:"register" json:"register"`

	MirrorAccessors   bool `toml:"mirror_getters_and_setters" json:"mirror_getters_and_setters"`
	OverrideAccessors bool `toml:"override_getters_and_setters" json:"override_getters_and_setters"`
	MirrorFunctions   bool `toml:"mirror_functions" json:"mirror_functions"`
	OverrideFunctions bool `toml:"override_functions" json:"override_functions"`
	MirrorOthers      bool `toml:"mirror_others" json:"mirror_others"`
	OverrideOthers    bool `toml:"override_others" json:"override_others"`
}

// DefaultConfig registers and mirrors everything without overriding.
func DefaultConfig() Config {
	return Config{
		Register:        true,
		MirrorAccessors: true,
		MirrorFunctions: true,
		MirrorOthers:    true,
	}
}

func effective(cfg *Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return *cfg
}

// ParseConfig decodes TOML on top of DefaultConfig, so absent keys keep
// their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
