package gendata

import "encoding/json"

// London-ish bounding box for the synthetic polygon grid.
const (
	gridWest   = -0.51
	gridSouth  = 51.28
	gridCols   = 7
	cellWidth  = 0.12
	cellHeight = 0.07
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
	Geometry   geometry          `json:"geometry"`
}

type geometry struct {
	Type        string           `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// boundaryGeoJSON lays the boroughs out on a rectangular grid. The
// shapes are fake; only the property names have to line up with the
// CSV boroughs for the choropleth join.
func boundaryGeoJSON(profiles []boroughProfile) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection"}
	for i, p := range profiles {
		col := i % gridCols
		row := i / gridCols
		west := gridWest + float64(col)*cellWidth
		south := gridSouth + float64(row)*cellHeight
		east := west + cellWidth
		north := south + cellHeight

		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Properties: map[string]string{"name": p.name},
			Geometry: geometry{
				Type: "Polygon",
				Coordinates: [][][2]float64{{
					{west, south}, {east, south}, {east, north}, {west, north}, {west, south},
				}},
			},
		})
	}
	return json.MarshalIndent(fc, "", "  ")
}
