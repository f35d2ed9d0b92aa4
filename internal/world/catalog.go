package world

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	// ErrEmptyCatalog is returned when a catalog declares no bodies.
	ErrEmptyCatalog = errors.New("catalog has no bodies")
	// ErrDuplicateBody is returned when two bodies share an id.
	ErrDuplicateBody = errors.New("duplicate body id")
)

// Shape is the geometric kind used to draw a body.
type Shape string

const (
	ShapeSphere     Shape = "sphere"
	ShapeTorus      Shape = "torus"
	ShapePolyhedron Shape = "polyhedron"
)

// Kind groups bodies by what they lead to in the host application.
type Kind string

const (
	KindShop  Kind = "shop"
	KindVideo Kind = "video"
	KindTools Kind = "tools"
)

// BodyDef is the YAML definition of one navigable body.
type BodyDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Kind        Kind     `yaml:"kind"`
	Radius      float64  `yaml:"radius"`   // base geometric size
	Distance    float64  `yaml:"distance"` // orbital radius
	Speed       float64  `yaml:"speed"`    // radians per frame
	Shape       Shape    `yaml:"shape"`
	Color       string   `yaml:"color"` // hex, "#rrggbb" or "0xrrggbb"
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	Ring        bool     `yaml:"ring"`
	Keywords    []string `yaml:"keywords"`
}

// StarDef describes the central star at the origin.
type StarDef struct {
	Name   string  `yaml:"name"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

// Catalog is the static set of bodies a scene is built from.
type Catalog struct {
	Star   StarDef   `yaml:"star"`
	Bodies []BodyDef `yaml:"bodies"`
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file, or the default catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates a Catalog from YAML bytes. Missing shapes
// default to sphere.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Bodies {
		if c.Bodies[i].Shape == "" {
			c.Bodies[i].Shape = ShapeSphere
		}
		if c.Bodies[i].Name == "" {
			c.Bodies[i].Name = c.Bodies[i].ID
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids, shapes and numeric ranges.
func (c *Catalog) Validate() error {
	if len(c.Bodies) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.ID == "" {
			return fmt.Errorf("body %d: missing id", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateBody, b.ID)
		}
		seen[b.ID] = true

		switch b.Shape {
		case ShapeSphere, ShapeTorus, ShapePolyhedron:
		default:
			return fmt.Errorf("body %s: unknown shape %q", b.ID, b.Shape)
		}
		if b.Radius <= 0 {
			return fmt.Errorf("body %s: radius must be positive", b.ID)
		}
		if b.Distance < 0 {
			return fmt.Errorf("body %s: negative distance", b.ID)
		}
		if b.Color != "" {
			if _, err := ParseColor(b.Color); err != nil {
				return fmt.Errorf("body %s: %w", b.ID, err)
			}
		}
	}
	return nil
}

// Body returns the definition with the given id.
func (c *Catalog) Body(id string) (BodyDef, bool) {
	for _, b := range c.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyDef{}, false
}

// ParseColor decodes "#rrggbb", "0xrrggbb" or "rrggbb" into 0xRRGGBB.
func ParseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(h) != 6 {
		return 0, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

// RGB splits the body color into components. Invalid or empty colors are white.
func (b BodyDef) RGB() (r, g, bl uint8) {
	v, err := ParseColor(b.Color)
	if err != nil {
		return 0xff, 0xff, 0xff
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
