package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"filedupfinder/internal/models"
)

// chunkSize is the read size used when streaming file contents into the hash.
const chunkSize = 4096

// ComputeFileHash computes the SHA256 hash of a file, streamed in
// fixed-size chunks.
func ComputeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, chunkSize)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// PerceptualHash computes the 64-bit average hash of an image file:
// 8x8 grayscale downsample, one bit per pixel brighter than the mean.
func PerceptualHash(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image: %w", err)
	}

	h, err := goimagehash.AverageHash(img)
	if err != nil {
		return 0, fmt.Errorf("failed to compute hash: %w", err)
	}

	return h.GetHash(), nil
}

// HammingDistance calculates the Hamming distance between two hashes
func HammingDistance(hash1, hash2 uint64) int {
	xor := hash1 ^ hash2
	count := 0
	for xor != 0 {
		count++
		xor &= xor - 1
	}
	return count
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".gif": true, ".tiff": true, ".tif": true, ".webp": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".py": true, ".go": true, ".js": true,
	".html": true, ".css": true, ".json": true, ".xml": true, ".csv": true,
}

// IsImageFile checks if a path has a recognized image extension
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsTextFile checks if a path has a recognized text extension
func IsTextFile(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileMetadata extracts image dimensions, format and EXIF presence for a
// file and fills them into info. Non-image files are left untouched.
// Decode failures are not errors; the file simply keeps zero metadata.
func FileMetadata(info *models.FileInfo) {
	if !IsImageFile(info.Path) {
		return
	}

	file, err := os.Open(info.Path)
	if err != nil {
		return
	}
	defer file.Close()

	// EXIF check needs its own reader, Decode consumes this one
	info.HasExif = checkExif(info.Path)

	img, format, err := image.Decode(file)
	if err != nil {
		return
	}

	bounds := img.Bounds()
	info.IsImage = true
	info.Width = bounds.Dx()
	info.Height = bounds.Dy()
	info.Format = strings.ToLower(format)
}

// checkExif checks if an image file contains EXIF data
func checkExif(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}

// CalculateScore computes the quality score used to pick which file in a
// duplicate group to keep. Images score by resolution with format and
// metadata multipliers; other files score by size.
func CalculateScore(info *models.FileInfo) float64 {
	if !info.IsImage {
		return float64(info.FileSize)
	}

	resolution := float64(info.Width * info.Height)
	return resolution * models.FormatQualityMultiplier(info.Format) * models.MetadataMultiplier(info.HasExif)
}
