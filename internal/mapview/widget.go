// Package mapview is an in-process map widget: a view, tile layers and
// clustering marker groups that serialize to GeoJSON for the browser.
package mapview

import (
	"fmt"
	"sync/atomic"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

// Layer is anything that can be attached to a Widget.
type Layer interface {
	LayerID() string
}

// ClusterLayer is a marker group that clusters its members when drawn.
type ClusterLayer interface {
	Layer
	ClearLayers()
	AddLayer(m *Marker)
}

// Widget is the capability surface the renderer and controller use.
type Widget interface {
	SetView(center model.LatLng, zoom int)
	AddTileLayer(urlTemplate string) Layer
	AddLayer(l Layer)
	RemoveLayer(l Layer)
	HasLayer(l Layer) bool
}

var layerSeq atomic.Uint64

func nextLayerID(kind string) string {
	return fmt.Sprintf("%s-%d", kind, layerSeq.Add(1))
}

type TileLayer struct {
	id          string
	URLTemplate string `json:"url"`
}

func (t *TileLayer) LayerID() string { return t.id }

type ViewState struct {
	Center model.LatLng `json:"center"`
	Zoom   int          `json:"zoom"`
	Tiles  []string     `json:"tiles"`
	Layers []string     `json:"layers"`
}

// Map is not safe for concurrent use; callers serialize access.
type Map struct {
	center model.LatLng
	zoom   int
	layers []Layer
}

var _ Widget = (*Map)(nil)

func NewMap(center model.LatLng, zoom int) *Map {
	return &Map{center: center, zoom: zoom}
}

func (m *Map) SetView(center model.LatLng, zoom int) {
	m.center = center
	m.zoom = zoom
}

func (m *Map) AddTileLayer(urlTemplate string) Layer {
	tl := &TileLayer{id: nextLayerID("tiles"), URLTemplate: urlTemplate}
	m.AddLayer(tl)
	return tl
}

// AddLayer is a no-op when l is already attached.
func (m *Map) AddLayer(l Layer) {
	if l == nil || m.HasLayer(l) {
		return
	}
	m.layers = append(m.layers, l)
}

func (m *Map) RemoveLayer(l Layer) {
	if l == nil {
		return
	}
	out := m.layers[:0]
	for _, x := range m.layers {
		if x.LayerID() != l.LayerID() {
			out = append(out, x)
		}
	}
	m.layers = out
}

func (m *Map) HasLayer(l Layer) bool {
	if l == nil {
		return false
	}
	for _, x := range m.layers {
		if x.LayerID() == l.LayerID() {
			return true
		}
	}
	return false
}

func (m *Map) View() ViewState {
	vs := ViewState{Center: m.center, Zoom: m.zoom}
	for _, l := range m.layers {
		if tl, ok := l.(*TileLayer); ok {
			vs.Tiles = append(vs.Tiles, tl.URLTemplate)
			continue
		}
		vs.Layers = append(vs.Layers, l.LayerID())
	}
	return vs
}
