package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompilerConfig is the top-level jankgo.yaml configuration. HeapPages,
// GCTriggerFraction and EnableInlineCaches are hashed into the compile cache
// key (internal/cache); neither the emitter nor the runtime reads them.
type CompilerConfig struct {
	// HeapPages is the number of 64KB wasm memory pages for the managed heap
	// (§3.5). Defaults to 16 (1MB) if unset. The emitter always declares a
	// one-page memory regardless of this value.
	HeapPages int `yaml:"heapPages,omitempty"`

	// GCTriggerFraction is the heap-use fraction for triggering gc() (§4.7
	// item 3). Defaults to 0.8. The runtime's collector uses its own fixed
	// allocation threshold and does not read this value.
	GCTriggerFraction float64 `yaml:"gcTriggerFraction,omitempty"`

	// EnableInlineCaches names the §4.6.7 per-site inline cache toggle. The
	// emitter always emits the per-site cache slots regardless of this value.
	EnableInlineCaches bool `yaml:"enableInlineCaches,omitempty"`

	// Verbose gates debug-level structured logging across every pipeline
	// stage.
	Verbose bool `yaml:"verbose,omitempty"`
}

// DefaultCompilerConfig returns the configuration used when no jankgo.yaml is
// present.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		HeapPages:          16,
		GCTriggerFraction:  0.8,
		EnableInlineCaches: true,
	}
}

// LoadCompilerConfig reads and decodes a jankgo.yaml file. A missing file is
// not an error: the default configuration is returned instead, mirroring the
// teacher's funxy.yaml-is-optional convention.
func LoadCompilerConfig(path string) (CompilerConfig, error) {
	cfg := DefaultCompilerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
