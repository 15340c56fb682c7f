package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorageList(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{
		"usa_CA_0.geojson",
		"usa_CA_1.geojson",
		"pacific/aus_NSW_0.geojson",
		"index.txt",
		"notes.gpkg",
	}
	for _, f := range testFiles {
		path := filepath.Join(tmpDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	storage := NewLocalStorage(tmpDir)
	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// Only .geojson files are shoreline layers.
	if len(objects) != 3 {
		t.Errorf("len(objects) = %d, want 3", len(objects))
	}
	for _, obj := range objects {
		if obj.Size != 2 {
			t.Errorf("object %q size = %d, want 2", obj.Key, obj.Size)
		}
		if obj.LastModified == 0 {
			t.Errorf("object %q LastModified should not be 0", obj.Key)
		}
	}
}

func TestLocalStorageListNonExistent(t *testing.T) {
	storage := NewLocalStorage("/nonexistent/path")
	if _, err := storage.List(context.Background()); err == nil {
		t.Error("List() should error for non-existent path")
	}
}

func TestLocalStorageExists(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "exists.geojson"), []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	storage := NewLocalStorage(tmpDir)

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"existing file", "exists.geojson", true},
		{"non-existing file", "missing.geojson", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := storage.Exists(context.Background(), tt.key)
			if err != nil {
				t.Errorf("Exists() error = %v", err)
			}
			if exists != tt.want {
				t.Errorf("Exists() = %v, want %v", exists, tt.want)
			}
		})
	}
}

func TestLocalStorageGetReader(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"type":"FeatureCollection","features":[]}`
	if err := os.WriteFile(filepath.Join(tmpDir, "test.geojson"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	storage := NewLocalStorage(tmpDir)
	reader, err := storage.GetReader(context.Background(), "test.geojson")
	if err != nil {
		t.Fatalf("GetReader() error = %v", err)
	}
	defer func() { _ = reader.Close() }()

	buf := make([]byte, len(content))
	if _, err := reader.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf) != content {
		t.Errorf("content = %q, want %q", string(buf), content)
	}
}

func TestLocalStorageDownload(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	content := `{"type":"FeatureCollection","features":[]}`
	if err := os.WriteFile(filepath.Join(srcDir, "source.geojson"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}

	storage := NewLocalStorage(srcDir)
	dest := filepath.Join(destDir, "nested", "dest.geojson")

	if err := storage.Download(context.Background(), "source.geojson", dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read dest file: %v", err)
	}
	if string(got) != content {
		t.Errorf("content = %q, want %q", string(got), content)
	}
}

func TestIsShorelineFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"usa_CA_0.geojson", true},
		{"USA_CA_0.GEOJSON", true},
		{"data.gpkg", false},
		{"index.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isShorelineFile(tt.name); got != tt.want {
				t.Errorf("isShorelineFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
