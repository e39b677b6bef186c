package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mohammed-shakir/storefront-map/internal/filter"
)

func newUI(t *testing.T) (*Page, *filter.State, *FilterUI, *int, *[]Toggle) {
	t.Helper()
	page := NewPage(ActivityContainer, ConstructionContainer)
	st := filter.New()
	refreshes := 0
	var toggles []Toggle
	f := NewFilterUI(page, st, Hooks{
		Refresh: func() { refreshes++ },
		Toggled: func(tg Toggle) { toggles = append(toggles, tg) },
	})
	if err := f.BuildActivityButtons([]string{"RETAIL", "OFFICE", "RETAIL"}); err != nil {
		t.Fatalf("BuildActivityButtons: %v", err)
	}
	if err := f.BuildConstructionButtons(); err != nil {
		t.Fatalf("BuildConstructionButtons: %v", err)
	}
	return page, st, f, &refreshes, &toggles
}

func children(t *testing.T, p *Page, id string) []*node {
	t.Helper()
	el, ok := p.ElementByID(id)
	if !ok {
		t.Fatalf("missing container %s", id)
	}
	return el.(*node).children
}

func TestBuild_ButtonsInOrderWithData(t *testing.T) {
	page, _, f, _, _ := newUI(t)

	acts := children(t, page, ActivityContainer)
	if len(acts) != 3 {
		t.Fatalf("activity buttons=%d want 3 (duplicates kept)", len(acts))
	}
	for i, want := range []string{"RETAIL", "OFFICE", "RETAIL"} {
		if acts[i].Text() != want || acts[i].Data("activity") != want {
			t.Fatalf("button %d text=%q data=%q want %q", i, acts[i].Text(), acts[i].Data("activity"), want)
		}
	}

	cons := children(t, page, ConstructionContainer)
	if len(cons) != 2 {
		t.Fatalf("construction buttons=%d want 2", len(cons))
	}
	if cons[0].Text() != "UNDER CONSTRUCTION" || cons[0].Data("value") != "YES" {
		t.Fatalf("first construction button=%q/%q", cons[0].Text(), cons[0].Data("value"))
	}
	if cons[1].Text() != "NOT UNDER CONSTRUCTION" || cons[1].Data("value") != "NO" {
		t.Fatalf("second construction button=%q/%q", cons[1].Text(), cons[1].Data("value"))
	}
	if f.Buttons() != 5 {
		t.Fatalf("bindings=%d want 5", f.Buttons())
	}
}

func TestClick_TogglesStateRefreshesAndDerivesClass(t *testing.T) {
	page, st, _, refreshes, toggles := newUI(t)
	acts := children(t, page, ActivityContainer)

	if err := page.Click(acts[0].ID()); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if !st.HasActivity("RETAIL") {
		t.Fatalf("expected RETAIL selected")
	}
	if *refreshes != 1 {
		t.Fatalf("refreshes=%d want 1", *refreshes)
	}
	// both RETAIL buttons reflect the shared state
	if !acts[0].HasClass("active") || !acts[2].HasClass("active") {
		t.Fatalf("expected both RETAIL buttons active")
	}
	if acts[1].HasClass("active") {
		t.Fatalf("OFFICE must not be active")
	}

	if err := page.Click(acts[2].ID()); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if st.HasActivity("RETAIL") || acts[0].HasClass("active") || acts[2].HasClass("active") {
		t.Fatalf("expected RETAIL cleared everywhere after second click")
	}
	if len(*toggles) != 2 || !(*toggles)[0].Selected || (*toggles)[1].Selected {
		t.Fatalf("toggles=%+v", *toggles)
	}
}

func TestClick_ConstructionButtonUsesValueNotLabel(t *testing.T) {
	page, st, _, _, _ := newUI(t)
	cons := children(t, page, ConstructionContainer)

	if err := page.Click(cons[1].ID()); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if !st.HasConstruction("NO") || st.HasConstruction("NOT UNDER CONSTRUCTION") {
		t.Fatalf("state=%+v", st.Snapshot())
	}
}

func TestClick_UnknownButton(t *testing.T) {
	page, _, _, _, _ := newUI(t)
	if err := page.Click("btn-999"); !errors.Is(err, ErrUnknownButton) {
		t.Fatalf("err=%v want ErrUnknownButton", err)
	}
	if err := page.Click(ActivityContainer); !errors.Is(err, ErrUnknownButton) {
		t.Fatalf("containers are not clickable, err=%v", err)
	}
}

func TestBuild_MissingContainer(t *testing.T) {
	f := NewFilterUI(NewPage(), filter.New(), Hooks{})
	if err := f.BuildActivityButtons([]string{"RETAIL"}); !errors.Is(err, ErrMissingContainer) {
		t.Fatalf("err=%v want ErrMissingContainer", err)
	}
	if err := f.BuildConstructionButtons(); !errors.Is(err, ErrMissingContainer) {
		t.Fatalf("err=%v want ErrMissingContainer", err)
	}
}

func TestRenderContainer_EscapesLabels(t *testing.T) {
	page := NewPage(ActivityContainer, ConstructionContainer)
	st := filter.New()
	f := NewFilterUI(page, st, Hooks{})
	if err := f.BuildActivityButtons([]string{`FOOD & DRINK`, `<b>X</b>`}); err != nil {
		t.Fatalf("build: %v", err)
	}
	st.ToggleActivity("FOOD & DRINK")
	f.Sync()

	html, err := page.RenderContainer(ActivityContainer)
	if err != nil {
		t.Fatalf("RenderContainer: %v", err)
	}
	s := string(html)
	if !strings.Contains(s, `class="active"`) {
		t.Fatalf("expected active class in %s", s)
	}
	if !strings.Contains(s, `FOOD &amp; DRINK`) || strings.Contains(s, `<b>X</b>`) {
		t.Fatalf("labels not escaped: %s", s)
	}
	if !strings.Contains(s, `data-activity="FOOD &amp; DRINK"`) {
		t.Fatalf("data attribute missing: %s", s)
	}
	if _, err := page.RenderContainer("nope"); !errors.Is(err, ErrMissingContainer) {
		t.Fatalf("err=%v want ErrMissingContainer", err)
	}
}
