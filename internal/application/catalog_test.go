package application

import (
	"context"
	"errors"
	"testing"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

func testCoastline(t *testing.T, points ...geom.Point) *domain.Coastline {
	t.Helper()
	c, err := domain.NewCoastline([]geom.Geom{geom.LineString(points)})
	if err != nil {
		t.Fatalf("building coastline: %v", err)
	}
	return c
}

func newTestCatalog(t *testing.T) (*Catalog, *mockMetrics) {
	t.Helper()
	storage := &mockStorage{objects: []output.StorageObject{
		{Key: "shorelines/usa_CA_0.geojson", Size: 100},
		{Key: "shorelines/aus_NSW_1.geojson", Size: 100},
		{Key: "shorelines/readme.txt", Size: 10},
	}}
	source := &mockSource{coastlines: map[string]*domain.Coastline{
		"shorelines/usa_CA_0.geojson": testCoastline(t,
			geom.Point{X: -122, Y: 36}, geom.Point{X: -121, Y: 37}),
		"shorelines/aus_NSW_1.geojson": testCoastline(t,
			geom.Point{X: 151, Y: -34}, geom.Point{X: 152, Y: -33}),
	}}
	metrics := newMockMetrics()
	return NewCatalog(testLogger(), storage, source, metrics), metrics
}

func TestCatalogRefresh(t *testing.T) {
	catalog, metrics := newTestCatalog(t)
	ctx := context.Background()

	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sources := catalog.Sources(ctx)
	if len(sources) != 2 {
		t.Fatalf("indexed %d sources, want 2 (txt file skipped)", len(sources))
	}
	if metrics.sources != 2 {
		t.Errorf("metrics recorded %d sources, want 2", metrics.sources)
	}
	if sources[0].Name != "usa_CA_0.geojson" {
		t.Errorf("source name = %q", sources[0].Name)
	}
}

func TestFindCandidateSources(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	tests := []struct {
		name string
		area domain.Extent
		want int
	}{
		{
			name: "california area",
			area: domain.Extent{MinX: -121.9, MinY: 36.4, MaxX: -121.8, MaxY: 36.6},
			want: 1,
		},
		{
			name: "mid-pacific",
			area: domain.Extent{MinX: -150, MinY: 10, MaxX: -149, MaxY: 11},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.FindCandidateSources(ctx, tt.area)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("found %d candidates, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLoadCoastline(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	coastline, err := catalog.LoadCoastline(ctx, domain.Extent{
		MinX: -121.9, MinY: 36.4, MaxX: -121.8, MaxY: 36.6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coastline.Features) != 1 {
		t.Errorf("loaded %d features, want 1", len(coastline.Features))
	}
}

func TestLoadCoastlineNoCoverage(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err := catalog.LoadCoastline(ctx, domain.Extent{
		MinX: -150, MinY: 10, MaxX: -149, MaxY: 11,
	})
	var notFound *domain.ObjectNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ObjectNotFoundError, got %v", err)
	}
	if notFound.Resource != "shoreline" {
		t.Errorf("Resource = %q, want shoreline", notFound.Resource)
	}
}

func TestCatalogRefreshListFailure(t *testing.T) {
	storage := &mockStorage{listErr: errors.New("network down")}
	catalog := NewCatalog(testLogger(), storage, &mockSource{}, nil)

	err := catalog.Refresh(context.Background())
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestCatalogSkipsUnreadableFiles(t *testing.T) {
	storage := &mockStorage{objects: []output.StorageObject{
		{Key: "good.geojson"},
		{Key: "bad.geojson"},
	}}
	source := &mockSource{coastlines: map[string]*domain.Coastline{
		"good.geojson": testCoastline(t, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1}),
	}}
	catalog := NewCatalog(testLogger(), storage, source, nil)

	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := catalog.SourceCount(context.Background()); got != 1 {
		t.Errorf("indexed %d sources, want 1", got)
	}
}
