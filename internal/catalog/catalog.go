// Package catalog is the fixed table of icons an item can be tagged with.
package catalog

import (
	"bytes"
	"fmt"
)

// Path is one filled outline of a glyph.
type Path struct {
	D    string
	Fill string
}

// Glyph is a renderable vector shape on a Width x Height canvas.
type Glyph struct {
	Width  float64
	Height float64
	Paths  []Path
}

// SVG serializes the glyph to standalone SVG markup.
func (g Glyph) SVG() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		g.Width, g.Height, g.Width, g.Height)
	for _, p := range g.Paths {
		fill := p.Fill
		if fill == "" {
			fill = "#000000"
		}
		fmt.Fprintf(&b, `<path d="%s" fill="%s"/>`, p.D, fill)
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}

// Icon pairs an identifier with its glyph.
type Icon struct {
	ID    string
	Glyph Glyph
}

// Catalog is an ordered, read-only icon lookup.
type Catalog struct {
	icons []Icon
	byID  map[string]int
}

// New builds a catalog from icons in the given order. Duplicate ids panic.
func New(icons ...Icon) *Catalog {
	c := &Catalog{
		icons: append([]Icon(nil), icons...),
		byID:  make(map[string]int, len(icons)),
	}
	for i, ic := range c.icons {
		if _, dup := c.byID[ic.ID]; dup {
			panic(fmt.Sprintf("catalog: duplicate icon id %q", ic.ID))
		}
		c.byID[ic.ID] = i
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Resolve returns the glyph for id.
func (c *Catalog) Resolve(id string) (Glyph, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Glyph{}, false
	}
	return c.icons[i].Glyph, true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns the icon ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.icons))
	for i, ic := range c.icons {
		ids[i] = ic.ID
	}
	return ids
}
