package icons

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidSVG is wrapped by every [Parse] failure.
var ErrInvalidSVG = errors.New("invalid svg")

// Fragment is a validated icon.
type Fragment struct {
	// Raw is the markup as fetched or stored.
	Raw []byte
	// Inner is the markup between the root <svg> tags.
	Inner string
	// MinX and MinY are the viewBox origin, zero without a viewBox.
	MinX, MinY float64
	// Width and Height are the viewBox extents, or the width/height
	// attributes when the viewBox is missing or malformed.
	Width, Height float64
	// Namespaces are the prefixed xmlns declarations of the root element,
	// in source order. Inner markup may depend on them.
	Namespaces []Namespace
}

// Namespace is one xmlns:prefix declaration.
type Namespace struct {
	Prefix, URI string
}

// Parse validates data as a standalone SVG document with positive extents
// and non-empty content.
func Parse(data []byte) (*Fragment, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSVG)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		root      *xml.StartElement
		innerFrom int64
		innerTo   int64
		depth     int
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root == nil {
				if t.Name.Local != "svg" {
					return nil, fmt.Errorf("%w: root element is <%s>", ErrInvalidSVG, t.Name.Local)
				}
				el := t.Copy()
				root = &el
				innerFrom = dec.InputOffset()
			} else if depth == 0 {
				return nil, fmt.Errorf("%w: multiple root elements", ErrInvalidSVG)
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				innerTo = offset
			}
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside the root element", ErrInvalidSVG)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidSVG)
	}

	frag := &Fragment{Raw: data, Inner: strings.TrimSpace(string(data[innerFrom:innerTo]))}
	if frag.Inner == "" {
		return nil, fmt.Errorf("%w: no content", ErrInvalidSVG)
	}
	if err := frag.extents(root.Attr); err != nil {
		return nil, err
	}
	for _, a := range root.Attr {
		if a.Name.Space == "xmlns" && a.Name.Local != "" && a.Name.Local != "xmlns" {
			frag.Namespaces = append(frag.Namespaces, Namespace{Prefix: a.Name.Local, URI: a.Value})
		}
	}
	return frag, nil
}

func (f *Fragment) extents(attrs []xml.Attr) error {
	var viewBox, width, height string
	for _, a := range attrs {
		switch a.Name.Local {
		case "viewBox":
			viewBox = a.Value
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		}
	}

	vb, ok := parseViewBox(viewBox)
	if ok {
		f.MinX, f.MinY, f.Width, f.Height = vb[0], vb[1], vb[2], vb[3]
	} else {
		var err1, err2 error
		f.Width, err1 = parseLength(width)
		f.Height, err2 = parseLength(height)
		if err := errors.Join(err1, err2); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: non-positive extents %gx%g", ErrInvalidSVG, f.Width, f.Height)
	}
	return nil
}

// parseViewBox reads "min-x min-y width height".
func parseViewBox(s string) ([4]float64, bool) {
	var vb [4]float64
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(parts) != 4 {
		return vb, false
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return vb, false
		}
		vb[i] = v
	}
	return vb, true
}

// parseLength reads a width or height attribute. A missing attribute is 0.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "px", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
