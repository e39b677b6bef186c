package mapview

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

// popups only need inline formatting; everything else is stripped
var popupPolicy = bluemonday.UGCPolicy()

type Marker struct {
	Pos   model.LatLng
	popup string
}

func NewMarker(lat, lng float64) *Marker {
	return &Marker{Pos: model.LatLng{Lat: lat, Lng: lng}}
}

// BindPopup attaches an HTML fragment. Markup outside the UGC policy
// (scripts, handlers, iframes) is removed.
func (m *Marker) BindPopup(html string) *Marker {
	m.popup = popupPolicy.Sanitize(html)
	return m
}

func (m *Marker) Popup() string { return m.popup }
