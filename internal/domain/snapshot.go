package domain

// LedgerSnapshot is a full copy of ledger state: the cell table plus
// the three side maps. Persistence adapters save and restore it whole;
// referential integrity is the ledger's job, a snapshot just carries
// whatever state the ledger held.
type LedgerSnapshot struct {
	Cells      []Cell
	Settings   SettingsMap
	Extraction map[string]ExtractionResult
	Distances  map[string]DistanceSeries
}
