package similarity

import (
	"testing"
	"time"

	"filedupfinder/internal/models"
)

// stubScorer returns canned pairwise scores keyed by path, symmetric.
type stubScorer struct {
	scores map[[2]string]float64
}

func (s stubScorer) Score(a, b *models.FileInfo) float64 {
	if v, ok := s.scores[[2]string{a.Path, b.Path}]; ok {
		return v
	}
	return s.scores[[2]string{b.Path, a.Path}]
}

func TestAnchorClusters_NonTransitive(t *testing.T) {
	a := fileAt("A")
	b := fileAt("B")
	c := fileAt("C")

	// B and C both clear the threshold against anchor A, but not against
	// each other; all three still land in one group
	scorer := stubScorer{scores: map[[2]string]float64{
		{"A", "B"}: 0.9,
		{"A", "C"}: 0.9,
		{"B", "C"}: 0.1,
	}}

	groups := anchorClusters([]*models.FileInfo{a, b, c}, scorer, 0.8)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	group := groups["group_0"]
	if len(group) != 3 {
		t.Fatalf("expected group of 3, got %d", len(group))
	}
}

func TestAnchorClusters_AnchorOrderMatters(t *testing.T) {
	a := fileAt("A")
	b := fileAt("B")
	c := fileAt("C")

	scorer := stubScorer{scores: map[[2]string]float64{
		{"A", "B"}: 0.1,
		{"A", "C"}: 0.1,
		{"B", "C"}: 0.9,
	}}

	// A anchors a singleton (discarded), then B picks up C
	groups := anchorClusters([]*models.FileInfo{a, b, c}, scorer, 0.8)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	group := groups["group_1"]
	if len(group) != 2 || group[0].Path != "B" || group[1].Path != "C" {
		t.Fatalf("expected group [B C], got %v", paths(group))
	}
}

func TestAnchorClusters_PartitionInvariant(t *testing.T) {
	files := []*models.FileInfo{fileAt("A"), fileAt("B"), fileAt("C"), fileAt("D")}

	scorer := stubScorer{scores: map[[2]string]float64{
		{"A", "B"}: 0.9,
		{"A", "C"}: 0.9,
		{"B", "C"}: 0.9,
		{"C", "D"}: 0.9,
	}}

	groups := anchorClusters(files, scorer, 0.8)

	seen := make(map[string]bool)
	for key, group := range groups {
		for _, f := range group {
			if seen[f.Path] {
				t.Errorf("file %s appears in more than one group (second: %s)", f.Path, key)
			}
			seen[f.Path] = true
		}
	}
}

func TestUnionFindClusters_TransitiveChain(t *testing.T) {
	a := fileAt("A")
	b := fileAt("B")
	c := fileAt("C")

	scorer := stubScorer{scores: map[[2]string]float64{
		{"A", "B"}: 0.1,
		{"A", "C"}: 0.1,
		{"B", "C"}: 0.9,
	}}

	// Unlike the anchor pass, pair order cannot exclude B-C here even
	// when A comes first
	groups := unionFindClusters([]*models.FileInfo{a, b, c}, scorer, 0.8)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, group := range groups {
		if len(group) != 2 {
			t.Fatalf("expected group of 2, got %v", paths(group))
		}
	}
}

func TestUnionFindClusters_MergesChains(t *testing.T) {
	a := fileAt("A")
	b := fileAt("B")
	c := fileAt("C")

	// A-B and B-C similar: union-find merges all three
	scorer := stubScorer{scores: map[[2]string]float64{
		{"A", "B"}: 0.9,
		{"B", "C"}: 0.9,
		{"A", "C"}: 0.1,
	}}

	groups := unionFindClusters([]*models.FileInfo{a, b, c}, scorer, 0.8)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, group := range groups {
		if len(group) != 3 {
			t.Fatalf("expected group of 3, got %v", paths(group))
		}
	}
}

func paths(files []*models.FileInfo) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestFindSimilarFiles_ExactOnly(t *testing.T) {
	tmpDir := t.TempDir()
	// Fingerprints h1, h1, h2
	a := writeFile(t, tmpDir, "a.txt", []byte("duplicate content"))
	b := writeFile(t, tmpDir, "b.txt", []byte("duplicate content"))
	c := writeFile(t, tmpDir, "c.txt", []byte("unique content"))

	cfg := DefaultConfig() // threshold 1.0
	d := NewDetector(cfg)

	groups := d.FindSimilarFiles([]*models.FileInfo{a, b, c})

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, group := range groups {
		if len(group) != 2 {
			t.Fatalf("expected group of 2, got %v", paths(group))
		}
		for _, f := range group {
			if f.Path == c.Path {
				t.Error("unique file must not appear in any group")
			}
		}
	}
}

func TestFindSimilarFiles_NFoldDuplicates(t *testing.T) {
	tmpDir := t.TempDir()
	var files []*models.FileInfo
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		files = append(files, writeFile(t, tmpDir, name, []byte("same")))
	}

	d := NewDetector(DefaultConfig())
	groups := d.FindSimilarFiles(files)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for _, group := range groups {
		if len(group) != 4 {
			t.Errorf("expected all 4 identical files in one group, got %d", len(group))
		}
	}
}

func TestFindSimilarFiles_ThresholdGatesNearDuplicates(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "a.txt", []byte("abcdefg"))
	b := writeFile(t, tmpDir, "b.txt", []byte("abcdefX"))

	// Similarity ~0.857: grouped at 0.8, not at 0.95
	d := NewDetector(textConfig(0.8))
	groups := d.FindSimilarFiles([]*models.FileInfo{a, b})
	if len(groups) != 1 {
		t.Fatalf("threshold 0.8: expected 1 group, got %d", len(groups))
	}

	d = NewDetector(textConfig(0.95))
	groups = d.FindSimilarFiles([]*models.FileInfo{a, b})
	if len(groups) != 0 {
		t.Fatalf("threshold 0.95: expected no groups, got %d", len(groups))
	}
}

func TestFindSimilarFiles_MergesExactAndNear(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "a.txt", []byte("duplicate content"))
	b := writeFile(t, tmpDir, "b.txt", []byte("duplicate content"))
	c := writeFile(t, tmpDir, "c.txt", []byte("abcdefg"))
	e := writeFile(t, tmpDir, "e.txt", []byte("abcdefX"))

	d := NewDetector(textConfig(0.8))
	groups := d.FindSimilarFiles([]*models.FileInfo{a, b, c, e})

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups (one exact, one near), got %d", len(groups))
	}

	seen := make(map[string]bool)
	for _, group := range groups {
		for _, f := range group {
			if seen[f.Path] {
				t.Errorf("file %s appears in more than one group", f.Path)
			}
			seen[f.Path] = true
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected all 4 files grouped, got %d", len(seen))
	}
}

func TestGroupByHash_UnreadableExcluded(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "a.txt", []byte("same"))
	b := writeFile(t, tmpDir, "b.txt", []byte("same"))
	missing := fileAt(tmpDir + "/missing.txt")

	groups, residue := groupByHash([]*models.FileInfo{a, b, missing})

	if len(groups) != 1 {
		t.Fatalf("expected 1 exact group, got %d", len(groups))
	}
	// The unreadable file joins the residue but never an exact group
	if len(residue) != 1 || residue[0].Path != missing.Path {
		t.Errorf("expected residue [missing.txt], got %v", paths(residue))
	}
}

func TestBuildGroups(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		files        []*models.FileInfo
		expectedKeep string
	}{
		{
			name: "keep highest score",
			files: []*models.FileInfo{
				{Path: "low.txt", Score: 1.0, FileSize: 100, ModTime: now},
				{Path: "high.txt", Score: 10.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "high.txt",
		},
		{
			name: "tie score, keep larger file",
			files: []*models.FileInfo{
				{Path: "small.txt", Score: 5.0, FileSize: 100, ModTime: now},
				{Path: "large.txt", Score: 5.0, FileSize: 1000, ModTime: now},
			},
			expectedKeep: "large.txt",
		},
		{
			name: "tie score and size, keep newer",
			files: []*models.FileInfo{
				{Path: "old.txt", Score: 5.0, FileSize: 100, ModTime: now.Add(-time.Hour)},
				{Path: "new.txt", Score: 5.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "new.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := BuildGroups(map[string][]*models.FileInfo{"group_0": tt.files})
			if len(groups) != 1 {
				t.Fatalf("expected 1 group, got %d", len(groups))
			}
			if groups[0].Keep.Path != tt.expectedKeep {
				t.Errorf("expected to keep %s, got %s", tt.expectedKeep, groups[0].Keep.Path)
			}
			if len(groups[0].Remove) != len(tt.files)-1 {
				t.Errorf("expected %d files to remove, got %d", len(tt.files)-1, len(groups[0].Remove))
			}
		})
	}
}

func TestBuildGroups_DropsSingletons(t *testing.T) {
	groupMap := map[string][]*models.FileInfo{
		"group_0": {fileAt("a"), fileAt("b")},
		"group_1": {fileAt("c")},
	}

	groups := BuildGroups(groupMap)

	if len(groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(groups))
	}
}
