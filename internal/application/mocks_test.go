package application

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// mockStore implements output.LedgerStore.
type mockStore struct {
	snapshot *domain.LedgerSnapshot
	saveErr  error
	loadErr  error
	saves    int
	loads    int
}

func (m *mockStore) Save(_ context.Context, snapshot domain.LedgerSnapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = &snapshot
	return nil
}

func (m *mockStore) Load(_ context.Context) (*domain.LedgerSnapshot, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return m.snapshot, nil
}

func (m *mockStore) SearchIntersect(_ context.Context, _ domain.Extent) ([]string, error) {
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

// mockStorage implements output.ObjectStorage.
type mockStorage struct {
	objects []output.StorageObject
	listErr error
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockStorage) Download(_ context.Context, _, _ string) error { return nil }

func (m *mockStorage) GetReader(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) { return true, nil }

// mockSource implements output.ShorelineSource.
type mockSource struct {
	coastlines map[string]*domain.Coastline
	err        error
}

func (m *mockSource) Load(_ context.Context, key string) (*domain.Coastline, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.coastlines[key]
	if !ok {
		return nil, domain.ErrSourceNotFound
	}
	return c, nil
}

// mockMetrics implements output.MetricsCollector and records calls.
type mockMetrics struct {
	gridOps    map[string]int
	cellCount  int
	sources    int
	storageOps map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		gridOps:    make(map[string]int),
		storageOps: make(map[string]int),
	}
}

func (m *mockMetrics) IncGridOperations(operation string, _ bool) {
	m.gridOps[operation]++
}

func (m *mockMetrics) ObserveGridDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) SetCellCount(count int) { m.cellCount = count }

func (m *mockMetrics) SetSourcesIndexed(count int) { m.sources = count }

func (m *mockMetrics) IncStorageOperations(operation string, _ bool) {
	m.storageOps[operation]++
}

func (m *mockMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
