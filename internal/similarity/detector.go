package similarity

import (
	"fmt"
	"strings"

	"filedupfinder/internal/hash"
	"filedupfinder/internal/models"
)

// Detector scores file pairs and clusters files into duplicate groups
// according to its Config. It keeps no state across invocations; a
// Detector is safe for concurrent Score calls.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector. An empty method list falls back to
// DefaultMethods and an empty strategy to anchor clustering.
func NewDetector(cfg Config) *Detector {
	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultMethods()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAnchor
	}
	return &Detector{cfg: cfg}
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// fingerprint returns the content hash for a file, preferring one already
// computed by the scanner. Returns "" for unreadable files.
func fingerprint(f *models.FileInfo) string {
	if f.ContentHash != "" {
		return f.ContentHash
	}
	h, err := hash.ComputeFileHash(f.Path)
	if err != nil {
		return ""
	}
	return h
}

// Score computes the aggregate similarity of two files in [0, 1].
//
// Identical fingerprints short-circuit to 1.0. Otherwise the configured
// methods run in order, each gated on list membership, its toggle and
// extension applicability, tracking the running maximum and stopping
// early once it clears the threshold. A method that fails (unreadable
// file, decode error) contributes 0.0 and evaluation continues.
func (d *Detector) Score(a, b *models.FileInfo) float64 {
	h1, h2 := fingerprint(a), fingerprint(b)
	if h1 != "" && h1 == h2 {
		return 1.0
	}

	maxScore := 0.0
	for _, m := range d.cfg.Methods {
		entry, ok := methodTable[m]
		if !ok {
			continue // hash_exact is handled by the fast path above
		}
		if !entry.enabled(&d.cfg) || !entry.applies(a, b) {
			continue
		}

		score, err := entry.score(a, b)
		if err != nil {
			continue
		}
		if score > maxScore {
			maxScore = score
		}
		if maxScore >= d.cfg.Threshold {
			break
		}
	}

	return maxScore
}

// Explain reports why two files were grouped. Every enabled, applicable
// method is re-run without early exit; each one whose score clears the
// threshold contributes "<label>: <percentage>".
func (d *Detector) Explain(a, b *models.FileInfo) string {
	h1, h2 := fingerprint(a), fingerprint(b)
	if h1 != "" && h1 == h2 {
		return "Identical content (same hash)"
	}

	var explanations []string
	for _, m := range d.cfg.Methods {
		entry, ok := methodTable[m]
		if !ok {
			continue
		}
		if !entry.enabled(&d.cfg) || !entry.applies(a, b) {
			continue
		}

		score, err := entry.score(a, b)
		if err != nil {
			continue
		}
		if score >= d.cfg.Threshold {
			explanations = append(explanations, fmt.Sprintf("%s: %.1f%%", entry.label, score*100))
		}
	}

	if len(explanations) == 0 {
		return "Unknown similarity"
	}
	return strings.Join(explanations, "; ")
}
