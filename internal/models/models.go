package models

import "time"

// FileInfo holds metadata and fingerprint information for a scanned file
type FileInfo struct {
	ID          int64     `json:"id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash,omitempty"` // SHA256 hash for exact matching; empty if unreadable
	FileSize    int64     `json:"file_size"`
	ModTime     time.Time `json:"mod_time"`
	IsImage     bool      `json:"is_image"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Format      string    `json:"format,omitempty"`
	HasExif     bool      `json:"has_exif,omitempty"`
	Score       float64   `json:"score"`
	GroupKey    string    `json:"group_key,omitempty"`
}

// DuplicateGroup represents a group of identical or similar files.
// Exact-duplicate groups are keyed by content hash; near-duplicate
// groups are keyed by their anchor index (e.g. "group_3").
type DuplicateGroup struct {
	Key    string      `json:"key"`
	Files  []*FileInfo `json:"files"`
	Keep   *FileInfo   `json:"keep"`   // File to keep (highest quality score)
	Remove []*FileInfo `json:"remove"` // Files to remove
}

// ScanResult holds the result of a folder scan
type ScanResult struct {
	TotalScanned    int               `json:"total_scanned"`
	TotalGroups     int               `json:"total_groups"`
	TotalDuplicates int               `json:"total_duplicates"`
	Groups          []*DuplicateGroup `json:"groups"`
}

// FormatQualityMultiplier returns quality multiplier for image format
func FormatQualityMultiplier(format string) float64 {
	switch format {
	case "png", "tiff", "bmp":
		return 1.2 // Lossless formats
	case "webp":
		return 1.1 // Often lossless or high quality
	case "jpeg", "jpg":
		return 1.0 // Lossy
	case "gif":
		return 0.9 // Limited colors
	default:
		return 1.0
	}
}

// MetadataMultiplier returns quality multiplier based on metadata presence
func MetadataMultiplier(hasExif bool) float64 {
	if hasExif {
		return 1.1 // Prefer files with metadata
	}
	return 1.0
}
