package similarity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy selects the clustering policy for near-duplicate groups.
type Strategy string

const (
	// StrategyAnchor is the default: greedy single-pass clustering where
	// membership is decided solely by similarity to the group's anchor.
	// The resulting relation is intentionally not transitive.
	StrategyAnchor Strategy = "anchor"

	// StrategyUnionFind merges all threshold-clearing pairs into
	// connected components. Opt-in only; it changes grouping results.
	StrategyUnionFind Strategy = "unionfind"
)

// Config controls near-duplicate detection. A method executes only when it
// is both present in Methods and its paired toggle is enabled; a method
// listed with its toggle off silently never runs. Treat as immutable once
// handed to a Detector.
type Config struct {
	// Threshold is the minimum aggregate score, in (0, 1], for two files
	// to be grouped. At exactly 1.0 only exact-hash grouping runs.
	Threshold float64 `yaml:"threshold"`

	// Methods is the ordered method list. hash_exact is implicit and
	// always checked first via the fingerprint fast path; it never needs
	// to be listed. Empty means DefaultMethods.
	Methods []Method `yaml:"methods"`

	Strategy Strategy `yaml:"strategy"`

	EnablePerceptualHash     bool `yaml:"enable_perceptual_hash"`
	EnableContentSimilarity  bool `yaml:"enable_content_similarity"`
	EnableImageSimilarity    bool `yaml:"enable_image_similarity"`
	EnableFilenameSimilarity bool `yaml:"enable_filename_similarity"`
}

// DefaultMethods returns the default ordered method list. The binary and
// filename methods are opt-in only.
func DefaultMethods() []Method {
	return []Method{MethodPerceptualHash, MethodContentText, MethodImageStructural}
}

// DefaultConfig returns a Config with exact-only matching and the default
// method set and toggles.
func DefaultConfig() Config {
	return Config{
		Threshold:               1.0,
		Methods:                 DefaultMethods(),
		Strategy:                StrategyAnchor,
		EnablePerceptualHash:    true,
		EnableContentSimilarity: true,
		EnableImageSimilarity:   true,
	}
}

// LoadConfig reads a YAML similarity configuration. Omitted fields keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultMethods()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAnchor
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects thresholds outside (0, 1], unknown methods and unknown
// strategies.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %g", c.Threshold)
	}

	for _, m := range c.Methods {
		if m == MethodExactHash {
			continue // implicit, tolerated in explicit lists
		}
		if _, ok := methodTable[m]; !ok {
			return fmt.Errorf("unknown similarity method %q", m)
		}
	}

	switch c.Strategy {
	case StrategyAnchor, StrategyUnionFind, "":
	default:
		return fmt.Errorf("unknown clustering strategy %q", c.Strategy)
	}

	return nil
}
