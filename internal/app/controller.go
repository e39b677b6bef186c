// Package app holds the per-session application state: the map, its marker
// layer, the filter selection and the filter buttons.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
	"github.com/mohammed-shakir/storefront-map/internal/datasource"
	"github.com/mohammed-shakir/storefront-map/internal/events"
	"github.com/mohammed-shakir/storefront-map/internal/filter"
	"github.com/mohammed-shakir/storefront-map/internal/mapview"
	"github.com/mohammed-shakir/storefront-map/internal/render"
	"github.com/mohammed-shakir/storefront-map/internal/ui"
)

var ErrNotReady = errors.New("session not initialized")

// DatasetProvider returns the shared dataset, loading it on first use.
type DatasetProvider interface {
	Get(ctx context.Context) (datasource.Dataset, error)
}

type Options struct {
	ID     string
	Data   DatasetProvider
	View   config.ViewCfg
	Logger *slog.Logger
	Events events.Publisher
}

// Status is what a click or a state query reports back.
type Status struct {
	Filters filter.Snapshot `json:"filters"`
	Result  render.Result   `json:"result"`
}

type Buttons struct {
	Activity     template.HTML `json:"activity"`
	Construction template.HTML `json:"construction"`
}

// Controller runs every operation of one page session under a single lock,
// so clicks run to completion and refreshes never overlap.
type Controller struct {
	mu sync.Mutex

	id     string
	data   DatasetProvider
	log    *slog.Logger
	events events.Publisher

	dataset  datasource.Dataset
	state    *filter.State
	widget   *mapview.Map
	markers  *mapview.ClusterGroup
	page     *ui.Page
	filters  *ui.FilterUI
	renderer *render.Renderer
	last     render.Result
	ready    bool
}

func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}

	v := opts.View
	widget := mapview.NewMap(model.LatLng{Lat: v.CenterLat, Lng: v.CenterLng}, v.Zoom)
	if v.TileURL != "" {
		widget.AddTileLayer(v.TileURL)
	}
	copts := mapview.DefaultClusterOptions()
	if v.ClusterOffset > 0 {
		copts.ResOffset = v.ClusterOffset
	}
	if v.ClusterOffAt > 0 {
		copts.DisableAtZoom = v.ClusterOffAt
	}
	if v.ClusterCache > 0 {
		copts.CacheSize = v.ClusterCache
	}
	markers := mapview.NewClusterGroup(copts)

	c := &Controller{
		id:       opts.ID,
		data:     opts.Data,
		log:      opts.Logger.With("session", opts.ID),
		events:   opts.Events,
		state:    filter.New(),
		widget:   widget,
		markers:  markers,
		page:     ui.NewPage(ui.ActivityContainer, ui.ConstructionContainer),
		renderer: render.New(widget, markers),
	}
	c.filters = ui.NewFilterUI(c.page, c.state, ui.Hooks{
		Refresh: c.refresh,
		Toggled: c.toggled,
	})
	return c
}

func (c *Controller) ID() string { return c.id }

// Init loads the dataset, draws every marker with no filter applied, then
// builds the activity and construction buttons. Nothing is built when the
// load fails.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	ds, err := c.data.Get(ctx)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	c.dataset = ds

	c.refresh()
	if err := c.filters.BuildActivityButtons(ds.Activities); err != nil {
		return fmt.Errorf("build activity buttons: %w", err)
	}
	if err := c.filters.BuildConstructionButtons(); err != nil {
		return fmt.Errorf("build construction buttons: %w", err)
	}
	c.ready = true

	c.log.Debug("session initialized",
		"rendered", c.last.Rendered,
		"no_position", c.last.NoPosition,
		"buttons", c.filters.Buttons())
	return nil
}

// Click delivers a button click to the page.
func (c *Controller) Click(_ context.Context, buttonID string) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return Status{}, ErrNotReady
	}
	if err := c.page.Click(buttonID); err != nil {
		return Status{}, err
	}
	return c.status(), nil
}

func (c *Controller) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return Status{}, ErrNotReady
	}
	return c.status(), nil
}

func (c *Controller) View() mapview.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widget.View()
}

func (c *Controller) Buttons() (Buttons, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return Buttons{}, ErrNotReady
	}
	act, err := c.page.RenderContainer(ui.ActivityContainer)
	if err != nil {
		return Buttons{}, err
	}
	con, err := c.page.RenderContainer(ui.ConstructionContainer)
	if err != nil {
		return Buttons{}, err
	}
	return Buttons{Activity: act, Construction: con}, nil
}

// Markers draws the marker layer at a zoom level, optionally inside a bbox.
func (c *Controller) Markers(zoom int, bb *model.BBox) (mapview.FeatureCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return mapview.FeatureCollection{}, ErrNotReady
	}
	return c.markers.Clusters(zoom, bb)
}

// LayerVersion changes whenever the marker layer is rebuilt.
func (c *Controller) LayerVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers.Version()
}

func (c *Controller) status() Status {
	return Status{Filters: c.state.Snapshot(), Result: c.last}
}

// refresh and toggled run with c.mu held, from Init or from a click.
func (c *Controller) refresh() {
	c.last = c.renderer.Refresh(c.dataset.Properties, c.state)
}

func (c *Controller) toggled(t ui.Toggle) {
	observability.IncButtonClick(string(t.Dimension))
	c.log.Debug("filter toggled",
		"dimension", string(t.Dimension),
		"value", t.Value,
		"selected", t.Selected,
		"rendered", c.last.Rendered)
	c.events.Publish(events.ToggleEvent{
		Session:   c.id,
		Dimension: string(t.Dimension),
		Value:     t.Value,
		Selected:  t.Selected,
		Rendered:  c.last.Rendered,
	})
}
