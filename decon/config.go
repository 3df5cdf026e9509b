package decon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Method names one of the two external deconvolution collaborators.
type Method string

const (
	// MethodSignature is the signature-matrix-based method.
	MethodSignature Method = "signature"
	// MethodReference is the expression-reference-based method.
	MethodReference Method = "reference"
)

// Config holds the per-run options passed to a deconvolution collaborator.
// Everything here is an explicit parameter: seeds, exclusion lists and
// reference choices are never process-wide state, so runs with different
// inputs cannot leak into each other.
type Config struct {
	Method Method `yaml:"method"`

	// TumorMode excludes genes known to be artificially overexpressed in
	// certain tumor types. The list is versioned reference data owned by the
	// collaborators and always arrives via ExcludeGenes, never hard-coded.
	TumorMode    bool     `yaml:"tumor_mode"`
	ExcludeGenes []string `yaml:"exclude_genes"`

	// ArrayPlatform switches the collaborator's expected input distribution
	// from sequencing to microarray.
	ArrayPlatform bool `yaml:"array_platform"`

	// MRNAScaling corrects for cell-type-specific mRNA content before
	// converting to cell-count fractions.
	MRNAScaling bool `yaml:"mrna_scaling"`

	// Reference names the reference panel: a collaborator built-in name or a
	// path to a custom table.
	Reference string `yaml:"reference"`

	Seed int64 `yaml:"seed"`
}

// ConfigError reports a combination of deconvolution options known to be
// rejected by the collaborators.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "incompatible deconvolution configuration: " + e.Msg
}

// LoadConfig reads a run configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects option combinations the collaborators are known to refuse.
// A signature-only reference without zero-padding makes the scaling problem
// under-determined, but the collaborators may still accept it, so that stays
// a caveat rather than an error here; Harmonize is the fix.
func (c Config) Validate() error {
	switch c.Method {
	case MethodSignature, MethodReference:
	case "":
		return &ConfigError{Msg: "method not set"}
	default:
		return &ConfigError{Msg: fmt.Sprintf("unknown method %q", c.Method)}
	}
	if c.TumorMode && len(c.ExcludeGenes) == 0 {
		return &ConfigError{Msg: "tumor mode requires an exclusion gene list"}
	}
	if c.Method == MethodReference && c.ArrayPlatform && c.MRNAScaling {
		return &ConfigError{Msg: "reference method cannot combine array platform with mRNA-content scaling"}
	}
	return nil
}
