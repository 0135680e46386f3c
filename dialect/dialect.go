package dialect

import (
	"gopkg.in/yaml.v3"
)

// A Config describes the variant of Quill accepted by an engine instance:
// which optional syntax the parser admits, and the resource limits the
// evaluator enforces. The zero value of a limit means "unlimited" except for
// MaxCallDepth, for which Default supplies a sane bound.
type Config struct {
	AllowClosures        bool `yaml:"allow_closures"`
	AllowDecimalLiterals bool `yaml:"allow_decimal_literals"`

	// When set, 'break' and 'continue' outside a loop are rejected by the
	// parser rather than left to fail at evaluation time.
	StrictLoopControl bool `yaml:"strict_loop_control"`

	MaxCallDepth  int `yaml:"max_call_depth"`
	MaxOperations int `yaml:"max_operations"`
	MaxStringSize int `yaml:"max_string_size"`
	MaxArraySize  int `yaml:"max_array_size"`
}

func Default() Config {
	return Config{
		AllowClosures:        true,
		AllowDecimalLiterals: false,
		StrictLoopControl:    false,
		MaxCallDepth:         128,
	}
}

// FromYAML reads a Config from YAML, starting from the defaults so that an
// embedding host need only mention the options it wants to change.
func FromYAML(data []byte) (Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
