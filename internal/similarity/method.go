// Package similarity implements the duplicate detection engine: exact
// grouping by content hash plus configurable near-duplicate scoring and
// clustering over heterogeneous file types.
package similarity

import (
	"filedupfinder/internal/hash"
	"filedupfinder/internal/models"
)

// Method identifies a similarity detection method.
type Method string

const (
	MethodExactHash       Method = "hash_exact"
	MethodPerceptualHash  Method = "hash_perceptual"
	MethodContentText     Method = "content_text"
	MethodContentBinary   Method = "content_binary"
	MethodImageStructural Method = "image_structural"
	MethodFilenameFuzzy   Method = "filename_fuzzy"
)

// methodEntry binds a method to its scoring function, gates and display
// label. The table is the single dispatch point: a Method missing from it
// (hash_exact, which is handled by the fingerprint fast path) is skipped
// during evaluation.
type methodEntry struct {
	label   string
	enabled func(*Config) bool
	applies func(a, b *models.FileInfo) bool
	score   func(a, b *models.FileInfo) (float64, error)
}

func bothImages(a, b *models.FileInfo) bool {
	return hash.IsImageFile(a.Path) && hash.IsImageFile(b.Path)
}

func bothText(a, b *models.FileInfo) bool {
	return hash.IsTextFile(a.Path) && hash.IsTextFile(b.Path)
}

func anyFiles(a, b *models.FileInfo) bool { return true }

var methodTable = map[Method]methodEntry{
	MethodPerceptualHash: {
		label:   "Visual similarity",
		enabled: func(c *Config) bool { return c.EnablePerceptualHash },
		applies: bothImages,
		score:   perceptualHashScore,
	},
	MethodContentText: {
		label:   "Text content similarity",
		enabled: func(c *Config) bool { return c.EnableContentSimilarity },
		applies: bothText,
		score:   textContentScore,
	},
	MethodContentBinary: {
		label:   "Binary content similarity",
		enabled: func(c *Config) bool { return c.EnableContentSimilarity },
		applies: anyFiles,
		score:   binaryContentScore,
	},
	MethodImageStructural: {
		label:   "Image structure similarity",
		enabled: func(c *Config) bool { return c.EnableImageSimilarity },
		applies: bothImages,
		score:   imageStructuralScore,
	},
	MethodFilenameFuzzy: {
		label:   "Filename similarity",
		enabled: func(c *Config) bool { return c.EnableFilenameSimilarity },
		applies: anyFiles,
		score:   filenameFuzzyScore,
	},
}
