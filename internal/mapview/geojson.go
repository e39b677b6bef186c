package mapview

// FeatureCollection follows the GeoJSON layout; coordinates are [lng, lat].
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Count sums cluster sizes; plain markers count as one.
func (fc FeatureCollection) Count() int {
	n := 0
	for _, f := range fc.Features {
		if c, ok := f.Properties["count"].(int); ok {
			n += c
			continue
		}
		n++
	}
	return n
}

func pointGeometry(lat, lng float64) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{lng, lat}}
}

func markerFeature(m *Marker) Feature {
	return Feature{
		Type:     "Feature",
		Geometry: pointGeometry(m.Pos.Lat, m.Pos.Lng),
		Properties: map[string]any{
			"cluster": false,
			"popup":   m.popup,
		},
	}
}
