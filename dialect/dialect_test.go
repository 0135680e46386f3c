package dialect

import (
	"testing"
)

func TestFromYAML(t *testing.T) {
	config, err := FromYAML([]byte("allow_decimal_literals: true\nmax_operations: 1000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !config.AllowDecimalLiterals {
		t.Fatalf("allow_decimal_literals should be set")
	}
	if config.MaxOperations != 1000 {
		t.Fatalf("max_operations should be 1000, got %d", config.MaxOperations)
	}
	// Unmentioned options keep their defaults.
	if !config.AllowClosures || config.MaxCallDepth != 128 {
		t.Fatalf("defaults should survive a partial config: %+v", config)
	}
}

func TestFromYAMLError(t *testing.T) {
	if _, err := FromYAML([]byte("max_call_depth: [not, an, int]\n")); err == nil {
		t.Fatalf("malformed config should error")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	config := Default()
	config.StrictLoopControl = true
	config.MaxStringSize = 64

	data, err := config.ToYAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := FromYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != config {
		t.Fatalf("round trip changed the config: %+v vs %+v", back, config)
	}
}
