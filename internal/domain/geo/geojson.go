// Package geo models the borough boundary GeoJSON and its validation.
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Geometry types accepted for borough boundaries.
const (
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// FeatureCollection is a GeoJSON FeatureCollection of borough boundaries.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single borough boundary with its properties.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   Geometry               `json:"geometry"`
}

// Geometry holds the raw coordinates of a Polygon or MultiPolygon.
// Polygon coordinates are [][][2]float64 (rings of lon/lat pairs);
// MultiPolygon adds one more nesting level. Coordinates are kept as
// raw JSON and decoded on demand so the collection can be re-served
// byte-compatibly.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Name returns the borough name of a feature, checking the property
// keys seen in the wild for this dataset.
func (f Feature) Name() string {
	for _, key := range []string{"name", "NAME", "Name", "borough", "BOROUGH"} {
		if v, ok := f.Properties[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Names returns the names of all features that carry one, in file order.
func (fc *FeatureCollection) Names() []string {
	names := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if n := f.Name(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Decode reads and validates a FeatureCollection. Features with an
// unsupported geometry type cause an error; features without a usable
// name are returned in skipped so the caller can log them.
func Decode(r io.Reader) (fc *FeatureCollection, skipped []int, err error) {
	fc = &FeatureCollection{}
	if err := json.NewDecoder(r).Decode(fc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, nil, fmt.Errorf("%w: type %q", ErrDecode, fc.Type)
	}
	if len(fc.Features) == 0 {
		return nil, nil, ErrEmptyCollection
	}
	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case GeometryPolygon, GeometryMultiPolygon:
		default:
			return nil, nil, fmt.Errorf("%w: feature %d has type %q", ErrUnsupportedGeometry, i, f.Geometry.Type)
		}
		if f.Name() == "" {
			skipped = append(skipped, i)
		}
	}
	return fc, skipped, nil
}

// Centroid returns the arithmetic mean of a feature's outer-ring
// vertices as (lon, lat). Good enough for centering a map; not an
// area-weighted centroid.
func (f Feature) Centroid() (lon, lat float64, err error) {
	var rings [][][]float64
	switch f.Geometry.Type {
	case GeometryPolygon:
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case GeometryMultiPolygon:
		var polys [][][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		for _, p := range polys {
			rings = append(rings, p...)
		}
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, f.Geometry.Type)
	}
	var n int
	for _, ring := range rings {
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			lon += pt[0]
			lat += pt[1]
			n++
		}
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: no coordinates", ErrDecode)
	}
	return lon / float64(n), lat / float64(n), nil
}
