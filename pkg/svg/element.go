package svg

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/graphrender/pkg/graph"
)

// Element is one node of the output tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element

	// Text is character data, escaped on output. For <style> it is the CSS.
	Text string

	// Raw is trusted markup written without escaping, after Text and
	// before Children.
	Raw string
}

// Attr is an attribute with its value already formatted.
type Attr struct {
	Name  string
	Value string
}

// El creates an element.
func El(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// A formats v as an attribute value. Floats go through [graph.FormatNumber].
func A(name string, v any) Attr {
	switch t := v.(type) {
	case string:
		return Attr{name, t}
	case float64:
		return Attr{name, graph.FormatNumber(t)}
	case int:
		return Attr{name, strconv.Itoa(t)}
	}
	return Attr{name, fmt.Sprint(v)}
}

// Append adds children and returns e.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the first descendant (depth first, e included) for which
// match is true.
func (e *Element) Find(match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, c := range e.Children {
		if f := c.Find(match); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every descendant (depth first, e included) for which match
// is true.
func (e *Element) FindAll(match func(*Element) bool) []*Element {
	var out []*Element
	if match(e) {
		out = append(out, e)
	}
	for _, c := range e.Children {
		out = append(out, c.FindAll(match)...)
	}
	return out
}

func (e *Element) empty() bool {
	return len(e.Children) == 0 && e.Text == "" && e.Raw == ""
}
