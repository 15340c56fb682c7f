package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/coastgrid/coastgrid/internal/adapters/geojson"
	"github.com/coastgrid/coastgrid/internal/domain"
)

// GenerateParams is the request body for grid generation. Omitted
// square lengths fall back to the configured defaults; an explicit
// zero disables that tiling pass.
type GenerateParams struct {
	BBox        *geojson.Geometry          `json:"bbox"`
	LargeLength *float64                   `json:"large_length,omitempty"`
	SmallLength *float64                   `json:"small_length,omitempty"`
	Coastline   *geojson.FeatureCollection `json:"coastline,omitempty"`
}

// handleGenerate builds the ROI table from a bounding box and the
// reference coastline, replacing any existing table.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var params GenerateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	g, err := geojson.DecodeGeometry(params.BBox)
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}
	bbox, err := domain.NewBoundingBox(g)
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	var coastline *domain.Coastline
	if params.Coastline != nil {
		coastline, err = geojson.DecodeCoastline(params.Coastline)
	} else if s.catalog != nil {
		coastline, err = s.catalog.LoadCoastline(r.Context(), bbox.Extent())
	} else {
		err = &domain.ObjectNotFoundError{
			Resource: "shoreline",
			Hint:     "no shoreline catalog configured and no inline coastline supplied",
		}
	}
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	largeLen := s.grid.LargeLength
	if params.LargeLength != nil {
		largeLen = *params.LargeLength
	}
	smallLen := s.grid.SmallLength
	if params.SmallLength != nil {
		smallLen = *params.SmallLength
	}

	s.ledgerMu.Lock()
	table, err := s.ledger.InitializeFromAreaAndCoastline(r.Context(), bbox, coastline, largeLen, smallLen)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusCreated, table)
}

// handleGetROIs returns the current ROI table as a feature collection.
func (s *Server) handleGetROIs(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	table := s.ledger.Table(r.Context())
	s.ledgerMu.Unlock()

	s.writeCellTable(w, http.StatusOK, table)
}

// handleReplaceROIs replaces the ROI table with the posted feature
// collection.
func (s *Server) handleReplaceROIs(w http.ResponseWriter, r *http.Request) {
	table, ok := s.decodeCellTable(w, r)
	if !ok {
		return
	}

	s.ledgerMu.Lock()
	result, err := s.ledger.InitializeFromGeometrySet(r.Context(), table)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusOK, result)
}

// handleAddROIs merges the posted feature collection into the table.
func (s *Server) handleAddROIs(w http.ResponseWriter, r *http.Request) {
	table, ok := s.decodeCellTable(w, r)
	if !ok {
		return
	}

	s.ledgerMu.Lock()
	result, err := s.ledger.Add(r.Context(), table.Cells)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusOK, result)
}

// handleRemoveROIs removes the cells named in the request body.
func (s *Server) handleRemoveROIs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.ledgerMu.Lock()
	result, err := s.ledger.RemoveByID(r.Context(), body.IDs)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusOK, result)
}

// handleRemoveROI removes a single cell by path id.
func (s *Server) handleRemoveROI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	result, err := s.ledger.RemoveByID(r.Context(), []string{id})
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusOK, result)
}

// handleGetSettings returns settings for the ids in the query string,
// or the whole map when none are given.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}

	s.ledgerMu.Lock()
	settings := s.ledger.GetSettings(r.Context(), ids...)
	s.ledgerMu.Unlock()

	s.writeJSON(w, http.StatusOK, settings)
}

// handleSetSettings replaces the settings map wholesale.
func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.SettingsMap
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.ledgerMu.Lock()
	err := s.ledger.SetSettings(r.Context(), settings)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateSettings shallow-merges partial settings into the map.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var partial domain.SettingsMap
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.ledgerMu.Lock()
	err := s.ledger.UpdateSettings(r.Context(), partial)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListExtractions returns the ids that have a stored extraction
// result.
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	ids := s.ledger.IDsWithExtraction(r.Context())
	s.ledgerMu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ids":   ids,
		"count": len(ids),
	})
}

// handleGetExtraction returns the stored extraction result for a cell.
// A cell with no result yet is a 404, not a server error.
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	result, ok := s.ledger.GetExtraction(r.Context(), id)
	s.ledgerMu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "No extraction result for this cell")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

// handleSetExtraction stores an extraction result for a cell.
func (s *Server) handleSetExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var result json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.ledgerMu.Lock()
	err := s.ledger.SetExtraction(r.Context(), id, domain.ExtractionResult(result))
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveExtraction forgets the extraction result for a cell.
func (s *Server) handleRemoveExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	s.ledger.RemoveExtraction(r.Context(), id)
	s.ledgerMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveAllExtractions resets the extraction map.
func (s *Server) handleRemoveAllExtractions(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	s.ledger.RemoveAllExtractions(r.Context())
	s.ledgerMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleAllDistances returns the whole distance map.
func (s *Server) handleAllDistances(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	distances := s.ledger.AllDistances(r.Context())
	s.ledgerMu.Unlock()

	s.writeJSON(w, http.StatusOK, distances)
}

// handleGetDistances returns the distance series for a cell.
func (s *Server) handleGetDistances(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	series, ok := s.ledger.GetDistances(r.Context(), id)
	s.ledgerMu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "No distance series for this cell")
		return
	}

	s.writeJSON(w, http.StatusOK, series)
}

// handleSetDistances stores a distance series for a cell.
func (s *Server) handleSetDistances(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var series domain.DistanceSeries
	if err := json.NewDecoder(r.Body).Decode(&series); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.ledgerMu.Lock()
	err := s.ledger.SetDistances(r.Context(), id, series)
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveDistances forgets the distance series for a cell.
func (s *Server) handleRemoveDistances(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	s.ledger.RemoveDistances(r.Context(), id)
	s.ledgerMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveAllDistances resets the distance map.
func (s *Server) handleRemoveAllDistances(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	s.ledger.RemoveAllDistances(r.Context())
	s.ledgerMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleListSources returns the indexed shoreline sources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources := s.catalog.Sources(r.Context())

	response := make([]map[string]interface{}, len(sources))
	for i, src := range sources {
		response[i] = map[string]interface{}{
			"name": src.Name,
			"key":  src.Key,
			"extent": map[string]interface{}{
				"min_x": src.Extent.MinX,
				"min_y": src.Extent.MinY,
				"max_x": src.Extent.MaxX,
				"max_y": src.Extent.MaxY,
			},
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": response,
		"count":   len(sources),
	})
}

// handleRefreshSources rebuilds the shoreline source index.
func (s *Server) handleRefreshSources(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Refresh(r.Context()); err != nil {
		s.logger.Error("catalog refresh failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to refresh shoreline catalog")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(s.catalog.Sources(r.Context())),
	})
}

// handlePersist saves the ledger through the configured store.
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	err := s.ledger.Persist(r.Context())
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRestore replaces the ledger with the last saved snapshot.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	err := s.ledger.Restore(r.Context())
	table := s.ledger.Table(r.Context())
	s.ledgerMu.Unlock()
	if err != nil {
		s.handleLedgerError(w, err)
		return
	}

	s.writeCellTable(w, http.StatusOK, table)
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":          boolToStatus(details.Healthy),
		"ready":           details.Ready,
		"cells":           details.Cells,
		"sources_indexed": details.SourcesIndexed,
		"components":      details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// decodeCellTable parses a posted feature collection into a cell
// table, writing the error response itself on failure.
func (s *Server) decodeCellTable(w http.ResponseWriter, r *http.Request) (*domain.CellTable, bool) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	table, err := geojson.DecodeCellTable(&fc)
	if err != nil {
		s.handleLedgerError(w, err)
		return nil, false
	}
	return table, true
}

// writeCellTable serializes a cell table response.
func (s *Server) writeCellTable(w http.ResponseWriter, status int, table *domain.CellTable) {
	fc, err := geojson.EncodeCellTable(table)
	if err != nil {
		s.logger.Error("failed to encode cell table", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to encode ROI table")
		return
	}
	s.writeJSON(w, status, fc)
}

// handleLedgerError maps domain errors to HTTP status codes.
func (s *Server) handleLedgerError(w http.ResponseWriter, err error) {
	var notFound *domain.ObjectNotFoundError
	if errors.As(err, &notFound) {
		s.writeError(w, http.StatusNotFound, notFound.Error())
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnsupported) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errors.Is(err, domain.ErrUnavailable) {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.logger.Error("ledger operation failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "Operation failed")
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>CoastGrid API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui"});
  </script>
</body>
</html>`

// handleSwaggerUI serves the interactive API documentation page.
func (s *Server) handleSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(swaggerUIPage))
}
