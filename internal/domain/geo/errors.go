package geo

import "errors"

// Sentinel kinds for boundary parsing errors.
var (
	ErrDecode              = errors.New("geojson decode failed")
	ErrEmptyCollection     = errors.New("geojson has no features")
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
)
