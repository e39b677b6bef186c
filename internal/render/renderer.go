// Package render rebuilds the marker layer from the property collection and
// the current filter selection.
package render

import (
	"time"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
	"github.com/mohammed-shakir/storefront-map/internal/filter"
	"github.com/mohammed-shakir/storefront-map/internal/mapview"
)

type Result struct {
	Rendered    int `json:"rendered"`
	NoPosition  int `json:"no_position"`
	FilteredOut int `json:"filtered_out"`
}

// Renderer is the only writer of the marker layer.
type Renderer struct {
	widget mapview.Widget
	layer  mapview.ClusterLayer
}

func New(widget mapview.Widget, layer mapview.ClusterLayer) *Renderer {
	return &Renderer{widget: widget, layer: layer}
}

// Refresh clears the layer and adds one marker per record that has a usable
// position and passes both filters, then makes sure the layer is on the map.
func (r *Renderer) Refresh(records []model.PropertyRecord, st *filter.State) Result {
	start := time.Now()
	r.layer.ClearLayers()

	var res Result
	for _, rec := range records {
		lat, lng, ok := Position(rec)
		if !ok {
			res.NoPosition++
			continue
		}
		if !st.Passes(Activity(rec), Construction(rec)) {
			res.FilteredOut++
			continue
		}
		r.layer.AddLayer(mapview.NewMarker(lat, lng).BindPopup(Popup(rec)))
		res.Rendered++
	}

	r.widget.AddLayer(r.layer)
	observability.ObserveRefresh(res.Rendered, time.Since(start).Seconds())
	return res
}
