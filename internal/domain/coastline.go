package domain

import "github.com/ctessum/geom"

// FeatureCoastline is the feature category name used in validation errors.
const FeatureCoastline = "Shoreline"

// AllowedCoastlineGeometryTypes lists the geometry types a reference
// coastline feature may carry.
var AllowedCoastlineGeometryTypes = []string{"LineString", "MultiLineString"}

// Coastline is the reference shoreline: a set of linear features in
// EPSG:4326 that ROI cells are filtered against.
type Coastline struct {
	Features []geom.Geom
}

// NewCoastline validates and wraps a set of linear features.
func NewCoastline(features []geom.Geom) (*Coastline, error) {
	if len(features) == 0 {
		return nil, &ObjectNotFoundError{Resource: "shoreline"}
	}
	if err := ValidateGeometryTypes(FeatureCoastline, features, AllowedCoastlineGeometryTypes); err != nil {
		return nil, err
	}
	return &Coastline{Features: features}, nil
}

// IsEmpty reports whether the coastline has no features.
func (c *Coastline) IsEmpty() bool {
	return c == nil || len(c.Features) == 0
}

// SourceRef identifies one regional reference-shoreline file in the
// shoreline catalog, with the geographic extent it covers.
type SourceRef struct {
	Name   string // file name, e.g. "usa_CA_0.geojson"
	Key    string // object storage key
	Extent Extent // coverage bounds in EPSG:4326
}
