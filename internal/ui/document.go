// Package ui builds the filter buttons and dispatches their clicks.
package ui

import "errors"

var (
	ErrUnknownButton    = errors.New("unknown button")
	ErrMissingContainer = errors.New("container element not found")
)

// Element is the part of a DOM node the filter UI touches.
type Element interface {
	ID() string
	SetText(text string)
	Text() string
	SetData(key, val string)
	Data(key string) string
	OnClick(fn func())
	SetClass(token string, on bool)
	HasClass(token string) bool
	Append(child Element)
}

// Document locates containers, creates buttons and delivers clicks.
type Document interface {
	ElementByID(id string) (Element, bool)
	CreateButton() Element
	Click(id string) error
}
