package icons

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		w, h  float64
		inner string
	}{
		{"viewBox", `<svg viewBox='0 0 24 12'><path d='M0 0h24v12H0z'/></svg>`, 24, 12, `<path d='M0 0h24v12H0z'/>`},
		{"comma viewBox", `<svg viewBox="0,0,16,16"><circle r="4"/></svg>`, 16, 16, `<circle r="4"/>`},
		{"width height fallback", `<svg width="32px" height="20"><rect width="1" height="1"/></svg>`, 32, 20, `<rect width="1" height="1"/>`},
		{"malformed viewBox falls back", `<svg viewBox="0 0 x" width="8" height="8"><g/></svg>`, 8, 8, `<g/>`},
		{"namespaced with prolog", `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">
  <path d="M1 1"/>
</svg>
`, 24, 24, `<path d="M1 1"/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.in))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if f.Width != tt.w || f.Height != tt.h {
				t.Errorf("extents = %vx%v, want %vx%v", f.Width, f.Height, tt.w, tt.h)
			}
			if f.Inner != tt.inner {
				t.Errorf("inner = %q, want %q", f.Inner, tt.inner)
			}
		})
	}
}

func TestParseOriginAndNamespaces(t *testing.T) {
	f, err := Parse([]byte(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="10 -5 24 24">` +
		`<defs><path id="p" d="M10 10h24"/></defs><use xlink:href="#p"/></svg>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.MinX != 10 || f.MinY != -5 {
		t.Errorf("origin = (%v,%v), want (10,-5)", f.MinX, f.MinY)
	}
	want := []Namespace{{Prefix: "xlink", URI: "http://www.w3.org/1999/xlink"}}
	if len(f.Namespaces) != 1 || f.Namespaces[0] != want[0] {
		t.Errorf("namespaces = %v, want %v", f.Namespaces, want)
	}

	plain, err := Parse([]byte(`<svg width="8" height="8"><g/></svg>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plain.MinX != 0 || plain.MinY != 0 || plain.Namespaces != nil {
		t.Errorf("fallback fragment = %+v, want zero origin and no namespaces", plain)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", "   "},
		{"not xml", "not-an-svg"},
		{"wrong root", `<html><body/></html>`},
		{"truncated", `<svg viewBox="0 0 24 24"><path d="M0`},
		{"no extents", `<svg><path/></svg>`},
		{"zero viewBox", `<svg viewBox="0 0 0 24"><path/></svg>`},
		{"negative size", `<svg width="-4" height="4"><path/></svg>`},
		{"bad width", `<svg width="wide" height="4"><path/></svg>`},
		{"no content", `<svg viewBox="0 0 24 24"></svg>`},
		{"self closing", `<svg viewBox="0 0 24 24"/>`},
		{"two roots", `<svg viewBox="0 0 1 1"><g/></svg><svg/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if !errors.Is(err, ErrInvalidSVG) {
				t.Errorf("Parse(%q) err = %v, want ErrInvalidSVG", tt.in, err)
			}
		})
	}
}

func TestDefIDs(t *testing.T) {
	d := NewDefIDs()
	if got := d.ID("mdi:router"); got != "icon-mdi-router" {
		t.Errorf("ID = %q", got)
	}
	if got := d.ID("mdi:router"); got != "icon-mdi-router" {
		t.Errorf("second ID = %q, want stable", got)
	}

	clash := d.ID("mdi/router")
	if clash == "icon-mdi-router" || len(clash) != len("icon-mdi-router")+9 {
		t.Errorf("colliding ID = %q, want hashed suffix", clash)
	}
	if got := d.ID("::"); got != "icon-icon" {
		t.Errorf("ID of unsafe-only name = %q", got)
	}
}
