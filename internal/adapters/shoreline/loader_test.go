package shoreline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

type fakeStorage struct {
	files map[string]string
	err   error
}

func (f *fakeStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	return nil, nil
}

func (f *fakeStorage) Download(ctx context.Context, key, dest string) error {
	return nil
}

func (f *fakeStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.files[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.files[key]
	return ok, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoaderLoad(t *testing.T) {
	storage := &fakeStorage{files: map[string]string{
		"usa_CA_0.geojson": `{
			"type": "FeatureCollection",
			"features": [
				{
					"type": "Feature",
					"geometry": {
						"type": "LineString",
						"coordinates": [[-121.9, 36.5], [-121.8, 36.6]]
					}
				}
			]
		}`,
	}}

	loader := NewLoader(storage, testLogger())
	coastline, err := loader.Load(context.Background(), "usa_CA_0.geojson")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(coastline.Features) != 1 {
		t.Errorf("len(Features) = %d, want 1", len(coastline.Features))
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		storage *fakeStorage
		key     string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "storage failure",
			storage: &fakeStorage{err: errors.New("connection refused")},
			key:     "usa_CA_0.geojson",
			check: func(t *testing.T, err error) {
				var storageErr *domain.StorageError
				if !errors.As(err, &storageErr) {
					t.Errorf("error = %v, want StorageError", err)
				}
			},
		},
		{
			name: "malformed json",
			storage: &fakeStorage{files: map[string]string{
				"bad.geojson": `{"type": "FeatureCollection", "features": [`,
			}},
			key: "bad.geojson",
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("Load() should error on malformed json")
				}
			},
		},
		{
			name: "no features",
			storage: &fakeStorage{files: map[string]string{
				"empty.geojson": `{"type": "FeatureCollection", "features": []}`,
			}},
			key: "empty.geojson",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Errorf("error = %v, want ErrNotFound", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(tt.storage, testLogger())
			_, err := loader.Load(context.Background(), tt.key)
			if err == nil {
				t.Fatal("Load() should have returned an error")
			}
			tt.check(t, err)
		})
	}
}
