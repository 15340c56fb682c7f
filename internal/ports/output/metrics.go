package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncGridOperations increments the grid operation counter.
	IncGridOperations(operation string, success bool)

	// ObserveGridDuration records grid operation duration.
	ObserveGridDuration(operation string, duration time.Duration)

	// SetCellCount sets the number of cells in the ledger.
	SetCellCount(count int)

	// SetSourcesIndexed sets the number of indexed shoreline sources.
	SetSourcesIndexed(count int)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncGridOperations implements MetricsCollector.
func (n *NoOpMetrics) IncGridOperations(_ string, _ bool) {}

// ObserveGridDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveGridDuration(_ string, _ time.Duration) {}

// SetCellCount implements MetricsCollector.
func (n *NoOpMetrics) SetCellCount(_ int) {}

// SetSourcesIndexed implements MetricsCollector.
func (n *NoOpMetrics) SetSourcesIndexed(_ int) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
