package mapview

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

type ClusterOptions struct {
	// h3 resolution used at a zoom level is zoom-ResOffset, clamped to 0..15
	ResOffset int
	// at or above this zoom every marker is drawn on its own
	DisableAtZoom int
	CacheSize     int
}

func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{ResOffset: 6, DisableAtZoom: 17, CacheSize: 64}
}

// ClusterGroup groups nearby markers into H3 cells when drawn. Every
// mutation bumps the version, which keys the drawn-output cache.
type ClusterGroup struct {
	id      string
	opts    ClusterOptions
	markers []*Marker
	version uint64
	cache   *lru.Cache[uint64, FeatureCollection]
}

var _ ClusterLayer = (*ClusterGroup)(nil)

func NewClusterGroup(opts ClusterOptions) *ClusterGroup {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	c, _ := lru.New[uint64, FeatureCollection](opts.CacheSize)
	return &ClusterGroup{
		id:    nextLayerID("cluster"),
		opts:  opts,
		cache: c,
	}
}

func (g *ClusterGroup) LayerID() string { return g.id }

func (g *ClusterGroup) ClearLayers() {
	g.markers = nil
	g.version++
}

func (g *ClusterGroup) AddLayer(m *Marker) {
	if m == nil {
		return
	}
	g.markers = append(g.markers, m)
	g.version++
}

func (g *ClusterGroup) Len() int { return len(g.markers) }

func (g *ClusterGroup) Version() uint64 { return g.version }

func (g *ClusterGroup) Markers() []*Marker {
	out := make([]*Marker, len(g.markers))
	copy(out, g.markers)
	return out
}

// Clusters draws the group at a zoom level, optionally restricted to a bbox.
func (g *ClusterGroup) Clusters(zoom int, bb *model.BBox) (FeatureCollection, error) {
	if zoom < 0 || zoom > 22 {
		return FeatureCollection{}, fmt.Errorf("invalid zoom %d (must be 0..22)", zoom)
	}
	key := g.cacheKey(zoom, bb)
	if fc, ok := g.cache.Get(key); ok {
		return fc, nil
	}

	var (
		fc  FeatureCollection
		err error
	)
	if zoom >= g.opts.DisableAtZoom {
		fc = g.unclustered(bb)
	} else {
		fc, err = g.clustered(ResForZoom(zoom, g.opts.ResOffset), bb)
		if err != nil {
			return FeatureCollection{}, err
		}
	}
	g.cache.Add(key, fc)
	return fc, nil
}

// cacheKey hashes the exact float bits of the bbox, so bboxes that print
// alike still get their own entries.
func (g *ClusterGroup) cacheKey(zoom int, bb *model.BBox) uint64 {
	buf := make([]byte, 0, 8*7)
	buf = binary.LittleEndian.AppendUint64(buf, g.version)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(zoom))
	if bb != nil {
		buf = append(buf, 1)
		for _, f := range [4]float64{bb.X1, bb.Y1, bb.X2, bb.Y2} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
	}
	return xxhash.Sum64(buf)
}

func (g *ClusterGroup) unclustered(bb *model.BBox) FeatureCollection {
	fc := NewFeatureCollection()
	for _, m := range g.markers {
		if bb != nil && !bb.Contains(m.Pos.Lat, m.Pos.Lng) {
			continue
		}
		fc.Features = append(fc.Features, markerFeature(m))
	}
	return fc
}

type bucket struct {
	cell    string
	members []*Marker
	latSum  float64
	lngSum  float64
}

func (g *ClusterGroup) clustered(res int, bb *model.BBox) (FeatureCollection, error) {
	idx := map[h3.Cell]int{}
	var buckets []*bucket
	for _, m := range g.markers {
		if bb != nil && !bb.Contains(m.Pos.Lat, m.Pos.Lng) {
			continue
		}
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: m.Pos.Lat, Lng: m.Pos.Lng}, res)
		if err != nil {
			return FeatureCollection{}, fmt.Errorf("h3 cell for %.6f,%.6f: %w", m.Pos.Lat, m.Pos.Lng, err)
		}
		i, ok := idx[cell]
		if !ok {
			i = len(buckets)
			idx[cell] = i
			buckets = append(buckets, &bucket{cell: cell.String()})
		}
		b := buckets[i]
		b.members = append(b.members, m)
		b.latSum += m.Pos.Lat
		b.lngSum += m.Pos.Lng
	}

	fc := NewFeatureCollection()
	for _, b := range buckets {
		if len(b.members) == 1 {
			fc.Features = append(fc.Features, markerFeature(b.members[0]))
			continue
		}
		n := float64(len(b.members))
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: pointGeometry(b.latSum/n, b.lngSum/n),
			Properties: map[string]any{
				"cluster": true,
				"count":   len(b.members),
				"cell":    b.cell,
			},
		})
	}
	return fc, nil
}

func ResForZoom(zoom, offset int) int {
	res := zoom - offset
	if res < 0 {
		return 0
	}
	if res > 15 {
		return 15
	}
	return res
}
