package domain

import "encoding/json"

// DownloadSettings is the per-cell download and processing
// configuration attached to an ROI after it is created.
type DownloadSettings struct {
	Dates      []string       `json:"dates"`              // [start, end], ISO dates
	Satellites []string       `json:"sat_list"`           // satellite mission names
	SiteName   string         `json:"sitename"`           // output directory name
	FilePath   string         `json:"filepath"`           // data root on disk
	Polygon    [][][2]float64 `json:"polygon"`            // cell rings as [lon, lat] pairs
	Collection string         `json:"landsat_collection"` // imagery collection id
}

// SettingsMap maps cell ids to their download settings.
type SettingsMap map[string]DownloadSettings

// Clone returns a copy of the map.
func (m SettingsMap) Clone() SettingsMap {
	out := make(SettingsMap, len(m))
	for id, s := range m {
		out[id] = s
	}
	return out
}

// Merge overlays other onto the map: ids present in other are added or
// overwritten whole, ids absent from other are left untouched. The
// merge is shallow; individual settings fields are never combined.
func (m SettingsMap) Merge(other SettingsMap) {
	for id, s := range other {
		m[id] = s
	}
}

// Subset returns the entries for the given ids. Ids without an entry
// are skipped.
func (m SettingsMap) Subset(ids []string) SettingsMap {
	out := make(SettingsMap, len(ids))
	for _, id := range ids {
		if s, ok := m[id]; ok {
			out[id] = s
		}
	}
	return out
}

// ExtractionResult is an opaque handle to an extracted-shoreline result
// produced by an external collaborator. The ledger stores and forgets
// it; it never inspects the payload.
type ExtractionResult = json.RawMessage

// DistanceSeries maps a transect id to its cross-shore distance time
// series in meters.
type DistanceSeries map[string][]float64

// Clone returns a deep copy of the series.
func (s DistanceSeries) Clone() DistanceSeries {
	out := make(DistanceSeries, len(s))
	for transect, values := range s {
		vv := make([]float64, len(values))
		copy(vv, values)
		out[transect] = vv
	}
	return out
}
