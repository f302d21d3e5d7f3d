package similarity

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"filedupfinder/internal/hash"
	"filedupfinder/internal/models"
)

// perceptualHashScore compares two images by 64-bit average hash:
// similarity = 1 - hammingDistance/64.
func perceptualHashScore(a, b *models.FileInfo) (float64, error) {
	h1, err := hash.PerceptualHash(a.Path)
	if err != nil {
		return 0, err
	}
	h2, err := hash.PerceptualHash(b.Path)
	if err != nil {
		return 0, err
	}

	similarity := 1.0 - float64(hash.HammingDistance(h1, h2))/64.0
	return math.Max(0, similarity), nil
}

// imageStructuralScore resizes both images to their common minimum
// dimensions and maps the Pearson correlation of the normalized pixel
// vectors into [0, 1].
func imageStructuralScore(a, b *models.FileInfo) (float64, error) {
	img1, err := decodeGray(a.Path)
	if err != nil {
		return 0, err
	}
	img2, err := decodeGray(b.Path)
	if err != nil {
		return 0, err
	}

	width := min(img1.Bounds().Dx(), img2.Bounds().Dx())
	height := min(img1.Bounds().Dy(), img2.Bounds().Dy())
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("degenerate image dimensions %dx%d", width, height)
	}

	v1 := pixelVector(resizeGray(img1, width, height))
	v2 := pixelVector(resizeGray(img2, width, height))

	correlation := pearson(v1, v2)
	if math.IsNaN(correlation) {
		correlation = 0.0 // constant image, correlation undefined
	}

	similarity := (correlation + 1.0) / 2.0
	return math.Max(0, math.Min(1, similarity)), nil
}

func decodeGray(path string) (*image.Gray, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray, nil
}

func resizeGray(img *image.Gray, width, height int) *image.Gray {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// pixelVector flattens a grayscale image into row-major values in [0, 1].
func pixelVector(img *image.Gray) []float64 {
	bounds := img.Bounds()
	v := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v = append(v, float64(img.GrayAt(x, y).Y)/255.0)
		}
	}
	return v
}

// pearson computes the Pearson correlation coefficient of two equal-length
// vectors. Returns NaN when either vector has zero variance.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	return num / den
}

// textContentScore computes the LCS match ratio over the full contents of
// two text files. Contents are compared byte-wise; invalid UTF-8 sequences
// pass through rather than raising.
func textContentScore(a, b *models.FileInfo) (float64, error) {
	content1, err := os.ReadFile(a.Path)
	if err != nil {
		return 0, err
	}
	content2, err := os.ReadFile(b.Path)
	if err != nil {
		return 0, err
	}

	return matchRatio(string(content1), string(content2)), nil
}

// binaryContentScore compares files byte-by-byte. Equal lengths score
// matches/length; differing lengths compare only the common prefix and
// divide by the longer length, so the size mismatch itself is penalized.
func binaryContentScore(a, b *models.FileInfo) (float64, error) {
	content1, err := os.ReadFile(a.Path)
	if err != nil {
		return 0, err
	}
	content2, err := os.ReadFile(b.Path)
	if err != nil {
		return 0, err
	}

	minLen := min(len(content1), len(content2))
	maxLen := max(len(content1), len(content2))
	if maxLen == 0 {
		return 1.0, nil // two empty files are identical
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if content1[i] == content2[i] {
			matches++
		}
	}

	return float64(matches) / float64(maxLen), nil
}

// filenameFuzzyScore applies the LCS match ratio to lowercased base names
// with directory and extension stripped.
func filenameFuzzyScore(a, b *models.FileInfo) (float64, error) {
	return matchRatio(stemOf(a.Path), stemOf(b.Path)), nil
}

func stemOf(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// matchRatio is the two-sequence similarity ratio 2*M / (len(a) + len(b)),
// with M the length of the longest common subsequence.
func matchRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	return 2.0 * float64(lcsLength(a, b)) / float64(len(a)+len(b))
}

// lcsLength computes the longest common subsequence length using
// O(min(m,n)) space via two-row DP.
func lcsLength(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	m, n := len(a), len(b)

	prev := make([]int, m+1)
	curr := make([]int, m+1)

	for j := 1; j <= n; j++ {
		for i := 1; i <= m; i++ {
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1] + 1
			} else {
				curr[i] = max(prev[i], curr[i-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[m]
}
