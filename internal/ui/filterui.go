package ui

import (
	"github.com/mohammed-shakir/storefront-map/internal/filter"
)

const (
	ActivityContainer     = "filter-buttons"
	ConstructionContainer = "construction-buttons"

	activeClass = "active"
)

type constructionOption struct {
	Label string
	Value string
}

var constructionOptions = []constructionOption{
	{Label: "UNDER CONSTRUCTION", Value: "YES"},
	{Label: "NOT UNDER CONSTRUCTION", Value: "NO"},
}

// Toggle describes one handled click.
type Toggle struct {
	Dimension filter.Dimension
	Value     string
	Selected  bool
}

type Hooks struct {
	// Refresh rebuilds the markers; called after every state change.
	Refresh func()
	// Toggled is optional and runs after Refresh.
	Toggled func(Toggle)
}

type binding struct {
	el    Element
	dim   filter.Dimension
	value string
}

// FilterUI wires buttons to a filter.State. A button's "active" class is
// always derived from the state, never toggled on its own.
type FilterUI struct {
	doc      Document
	state    *filter.State
	hooks    Hooks
	bindings []binding
}

func NewFilterUI(doc Document, state *filter.State, hooks Hooks) *FilterUI {
	return &FilterUI{doc: doc, state: state, hooks: hooks}
}

// BuildActivityButtons appends one button per category, in list order.
func (f *FilterUI) BuildActivityButtons(activities []string) error {
	container, ok := f.doc.ElementByID(ActivityContainer)
	if !ok {
		return ErrMissingContainer
	}
	for _, a := range activities {
		btn := f.doc.CreateButton()
		btn.SetText(a)
		btn.SetData("activity", a)
		f.bind(btn, filter.Activity, a)
		container.Append(btn)
	}
	return nil
}

func (f *FilterUI) BuildConstructionButtons() error {
	container, ok := f.doc.ElementByID(ConstructionContainer)
	if !ok {
		return ErrMissingContainer
	}
	for _, opt := range constructionOptions {
		btn := f.doc.CreateButton()
		btn.SetText(opt.Label)
		btn.SetData("value", opt.Value)
		f.bind(btn, filter.Construction, opt.Value)
		container.Append(btn)
	}
	return nil
}

func (f *FilterUI) bind(btn Element, dim filter.Dimension, value string) {
	f.bindings = append(f.bindings, binding{el: btn, dim: dim, value: value})
	btn.OnClick(func() {
		selected := f.state.Toggle(dim, value)
		if f.hooks.Refresh != nil {
			f.hooks.Refresh()
		}
		f.Sync()
		if f.hooks.Toggled != nil {
			f.hooks.Toggled(Toggle{Dimension: dim, Value: value, Selected: selected})
		}
	})
	btn.SetClass(activeClass, f.state.Has(dim, value))
}

// Sync sets every button's active class from the filter state.
func (f *FilterUI) Sync() {
	for _, b := range f.bindings {
		b.el.SetClass(activeClass, f.state.Has(b.dim, b.value))
	}
}

func (f *FilterUI) Buttons() int { return len(f.bindings) }
