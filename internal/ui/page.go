package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Page is an in-memory Document. Not safe for concurrent use.
type Page struct {
	elems map[string]*node
	seq   int
}

var _ Document = (*Page)(nil)

// NewPage creates a document holding empty containers with the given ids.
func NewPage(containerIDs ...string) *Page {
	p := &Page{elems: map[string]*node{}}
	for _, id := range containerIDs {
		p.elems[id] = &node{id: id, tag: "div"}
	}
	return p
}

func (p *Page) ElementByID(id string) (Element, bool) {
	n, ok := p.elems[id]
	if !ok {
		return nil, false
	}
	return n, true
}

func (p *Page) CreateButton() Element {
	p.seq++
	n := &node{id: fmt.Sprintf("btn-%d", p.seq), tag: "button"}
	p.elems[n.id] = n
	return n
}

func (p *Page) Click(id string) error {
	n, ok := p.elems[id]
	if !ok || n.tag != "button" {
		return fmt.Errorf("click %q: %w", id, ErrUnknownButton)
	}
	for _, fn := range n.handlers {
		fn()
	}
	return nil
}

type node struct {
	id       string
	tag      string
	text     string
	data     map[string]string
	classes  []string
	handlers []func()
	children []*node
}

func (n *node) ID() string { return n.id }

func (n *node) SetText(text string) { n.text = text }

func (n *node) Text() string { return n.text }

func (n *node) SetData(key, val string) {
	if n.data == nil {
		n.data = map[string]string{}
	}
	n.data[key] = val
}

func (n *node) Data(key string) string { return n.data[key] }

func (n *node) OnClick(fn func()) { n.handlers = append(n.handlers, fn) }

func (n *node) SetClass(token string, on bool) {
	has := n.HasClass(token)
	switch {
	case on && !has:
		n.classes = append(n.classes, token)
	case !on && has:
		out := n.classes[:0]
		for _, c := range n.classes {
			if c != token {
				out = append(out, c)
			}
		}
		n.classes = out
	}
}

func (n *node) HasClass(token string) bool {
	for _, c := range n.classes {
		if c == token {
			return true
		}
	}
	return false
}

func (n *node) Append(child Element) {
	c, ok := child.(*node)
	if !ok {
		return
	}
	n.children = append(n.children, c)
}

type attr struct{ Key, Val string }

type buttonView struct {
	ID    string
	Class string
	Data  []attr
	Text  string
}

var buttonsTmpl = template.Must(template.New("buttons").Parse(
	`{{range .}}<button type="button" id="{{.ID}}"{{if .Class}} class="{{.Class}}"{{end}}` +
		`{{range .Data}} data-{{.Key}}="{{.Val}}"{{end}}>{{.Text}}</button>{{end}}`))

// RenderContainer renders the buttons appended to a container, in order.
func (p *Page) RenderContainer(id string) (template.HTML, error) {
	n, ok := p.elems[id]
	if !ok {
		return "", fmt.Errorf("render %q: %w", id, ErrMissingContainer)
	}
	views := make([]buttonView, 0, len(n.children))
	for _, c := range n.children {
		keys := make([]string, 0, len(c.data))
		for k := range c.data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		v := buttonView{ID: c.id, Class: strings.Join(c.classes, " "), Text: c.text}
		for _, k := range keys {
			v.Data = append(v.Data, attr{Key: k, Val: c.data[k]})
		}
		views = append(views, v)
	}
	var buf bytes.Buffer
	if err := buttonsTmpl.Execute(&buf, views); err != nil {
		return "", fmt.Errorf("render %q: %w", id, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
