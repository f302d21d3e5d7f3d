package storage

import (
	"path/filepath"
	"testing"
	"time"

	"filedupfinder/internal/models"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFiles() []*models.FileInfo {
	modTime := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return []*models.FileInfo{
		{
			Path:        "/photos/beach.jpg",
			ContentHash: "abc123",
			FileSize:    2048,
			ModTime:     modTime,
			IsImage:     true,
			Width:       1920,
			Height:      1080,
			Format:      "jpeg",
			HasExif:     true,
			Score:       100.5,
		},
		{
			Path:        "/docs/report.txt",
			ContentHash: "def456",
			FileSize:    512,
			ModTime:     modTime,
			Score:       512,
		},
	}
}

func TestSaveAndGetAllFiles(t *testing.T) {
	store := testStorage(t)

	if err := store.SaveFiles(sampleFiles()); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	files, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	// Ordered by path
	f := files[1]
	if f.Path != "/photos/beach.jpg" {
		t.Errorf("path = %s, want /photos/beach.jpg", f.Path)
	}
	if f.ContentHash != "abc123" {
		t.Errorf("content hash = %s, want abc123", f.ContentHash)
	}
	if !f.IsImage || !f.HasExif {
		t.Error("image flags not round-tripped")
	}
	if f.Width != 1920 || f.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", f.Width, f.Height)
	}
	if f.Score != 100.5 {
		t.Errorf("score = %v, want 100.5", f.Score)
	}
	want := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if !f.ModTime.Equal(want) {
		t.Errorf("mod time = %v, want %v", f.ModTime, want)
	}
}

func TestSaveFiles_UpsertsByPath(t *testing.T) {
	store := testStorage(t)
	files := sampleFiles()

	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}
	files[0].Score = 999
	if err := store.SaveFiles(files[:1]); err != nil {
		t.Fatalf("second SaveFiles failed: %v", err)
	}

	stored, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 files after upsert, got %d", len(stored))
	}
	f, err := store.GetFileByPath("/photos/beach.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	if f.Score != 999 {
		t.Errorf("score after upsert = %v, want 999", f.Score)
	}
}

func TestGetFileByPath_Missing(t *testing.T) {
	store := testStorage(t)

	f, err := store.GetFileByPath("/no/such/file")
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil for missing path, got %+v", f)
	}
}

func TestUpdateGroupsAndQuery(t *testing.T) {
	store := testStorage(t)
	files := sampleFiles()
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	groups := []*models.DuplicateGroup{
		{Key: "group_0", Files: files},
	}
	if err := store.UpdateGroups(groups); err != nil {
		t.Fatalf("UpdateGroups failed: %v", err)
	}

	members, err := store.GetFilesByGroupKey("group_0")
	if err != nil {
		t.Fatalf("GetFilesByGroupKey failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 group members, got %d", len(members))
	}
	// Best quality first: higher score wins
	if members[0].Path != "/docs/report.txt" {
		t.Errorf("best file = %s, want /docs/report.txt", members[0].Path)
	}

	count, err := store.GetGroupCount()
	if err != nil {
		t.Fatalf("GetGroupCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("group count = %d, want 1", count)
	}
}

func TestUpdateGroups_ResetsStaleKeys(t *testing.T) {
	store := testStorage(t)
	files := sampleFiles()
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	if err := store.UpdateGroups([]*models.DuplicateGroup{{Key: "group_0", Files: files}}); err != nil {
		t.Fatalf("first UpdateGroups failed: %v", err)
	}
	// A later scan with no duplicates clears every key
	if err := store.UpdateGroups(nil); err != nil {
		t.Fatalf("second UpdateGroups failed: %v", err)
	}

	count, err := store.GetGroupCount()
	if err != nil {
		t.Fatalf("GetGroupCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("group count after reset = %d, want 0", count)
	}
}

func TestGetDuplicateGroups(t *testing.T) {
	store := testStorage(t)
	modTime := time.Now().UTC().Truncate(time.Second)
	files := []*models.FileInfo{
		{Path: "/a.txt", ContentHash: "h1", FileSize: 100, ModTime: modTime, Score: 10},
		{Path: "/b.txt", ContentHash: "h1", FileSize: 100, ModTime: modTime, Score: 5},
		{Path: "/c.txt", ContentHash: "h2", FileSize: 100, ModTime: modTime, Score: 1},
	}
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}
	if err := store.UpdateGroups([]*models.DuplicateGroup{{Key: "h1", Files: files[:2]}}); err != nil {
		t.Fatalf("UpdateGroups failed: %v", err)
	}

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		t.Fatalf("GetDuplicateGroups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Key != "h1" {
		t.Errorf("group key = %s, want h1", g.Key)
	}
	if g.Keep.Path != "/a.txt" {
		t.Errorf("keep = %s, want /a.txt", g.Keep.Path)
	}
	if len(g.Remove) != 1 || g.Remove[0].Path != "/b.txt" {
		t.Errorf("remove = %v, want [/b.txt]", g.Remove)
	}
}

func TestDeleteFile(t *testing.T) {
	store := testStorage(t)
	if err := store.SaveFiles(sampleFiles()); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	if err := store.DeleteFile("/docs/report.txt"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}

	files, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(files) != 1 || files[0].Path != "/photos/beach.jpg" {
		t.Errorf("unexpected files after delete: %d", len(files))
	}
}

func TestRecordScan(t *testing.T) {
	store := testStorage(t)

	if err := store.RecordScan("/photos", 100, 5, 12); err != nil {
		t.Fatalf("RecordScan failed: %v", err)
	}

	var folder string
	var totalFiles int
	err := store.db.QueryRow(`SELECT folder, total_files FROM scan_history`).Scan(&folder, &totalFiles)
	if err != nil {
		t.Fatalf("failed to read scan history: %v", err)
	}
	if folder != "/photos" || totalFiles != 100 {
		t.Errorf("scan history = (%s, %d), want (/photos, 100)", folder, totalFiles)
	}
}

func TestNewStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	store.Close()
}
