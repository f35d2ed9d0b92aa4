package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	GlyphWidth  = 16
	GlyphHeight = 16
	AtlasCols   = 16
	AtlasRows   = 16
)

// CP437 codes of the non-ASCII glyphs the scene uses.
const (
	GlyphDiamond     byte = 4   // ♦ hub
	GlyphBullet      byte = 7   // • particle
	GlyphSun         byte = 15  // ☼ star
	GlyphRight       byte = 16  // ► craft heading
	GlyphLeft        byte = 17  // ◄
	GlyphUp          byte = 30  // ▲
	GlyphDown        byte = 31  // ▼
	GlyphShadeLight  byte = 176 // ░
	GlyphShadeMedium byte = 177 // ▒
	GlyphBlock       byte = 219 // █
	GlyphSquare      byte = 254 // ■
	GlyphHLine       byte = 196 // ─
	GlyphVLine       byte = 179 // │
)

var glyphRunes = map[byte]rune{
	GlyphDiamond:     '♦',
	GlyphBullet:      '•',
	GlyphSun:         '☼',
	GlyphRight:       '►',
	GlyphLeft:        '◄',
	GlyphUp:          '▲',
	GlyphDown:        '▼',
	GlyphShadeLight:  '░',
	GlyphShadeMedium: '▒',
	GlyphBlock:       '█',
	GlyphSquare:      '■',
	GlyphHLine:       '─',
	GlyphVLine:       '│',
}

// GlyphRune maps a CP437 code to the Unicode rune a terminal shows for it.
func GlyphRune(code byte) rune {
	if code >= 32 && code <= 126 {
		return rune(code)
	}
	if r, ok := glyphRunes[code]; ok {
		return r
	}
	return ' '
}

// FontAtlas holds the CP437 glyph sheet and cached sub-images.
type FontAtlas struct {
	image  *ebiten.Image
	glyphs [256]*ebiten.Image
}

// NewFontAtlas renders the glyph sheet once. ASCII comes from
// basicfont.Face7x13; the symbol glyphs are drawn by hand.
func NewFontAtlas() *FontAtlas {
	eimg := ebiten.NewImageFromImage(AtlasImage())
	a := &FontAtlas{image: eimg}
	for code := 0; code < 256; code++ {
		a.glyphs[code] = eimg.SubImage(glyphRect(byte(code))).(*ebiten.Image)
	}
	return a
}

// Glyph returns the cached sub-image for a CP437 code.
func (a *FontAtlas) Glyph(code byte) *ebiten.Image {
	return a.glyphs[code]
}

// Close releases the atlas texture.
func (a *FontAtlas) Close() error {
	if a.image != nil {
		a.image.Deallocate()
		a.image = nil
	}
	return nil
}

// AtlasImage rasterizes the glyph sheet on the CPU.
func AtlasImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, AtlasCols*GlyphWidth, AtlasRows*GlyphHeight))
	face := basicfont.Face7x13
	for code := 0; code < 256; code++ {
		r := glyphRect(byte(code))
		if code >= 32 && code <= 126 {
			drawFontGlyph(img, face, r.Min.X, r.Min.Y, rune(code))
			continue
		}
		drawSymbol(img, r.Min.X, r.Min.Y, byte(code))
	}
	return img
}

func glyphRect(code byte) image.Rectangle {
	x := int(code) % AtlasCols * GlyphWidth
	y := int(code) / AtlasCols * GlyphHeight
	return image.Rect(x, y, x+GlyphWidth, y+GlyphHeight)
}

// drawFontGlyph renders one ASCII character centered in its 16x16 cell.
func drawFontGlyph(img *image.NRGBA, face font.Face, cellX, cellY int, r rune) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(cellX+4, cellY+13),
	}
	d.DrawString(string(r))
}

// drawSymbol draws the hand-made glyphs. Codes without a drawing stay blank.
func drawSymbol(img *image.NRGBA, cellX, cellY int, code byte) {
	w := color.NRGBA{255, 255, 255, 255}
	fill := func(inside func(x, y int) bool) {
		for y := 0; y < GlyphHeight; y++ {
			for x := 0; x < GlyphWidth; x++ {
				if inside(x, y) {
					img.SetNRGBA(cellX+x, cellY+y, w)
				}
			}
		}
	}
	switch code {
	case GlyphDiamond:
		fill(func(x, y int) bool { return abs(x-7)+abs(y-7) <= 5 })
	case GlyphBullet:
		fill(func(x, y int) bool { return (x-7)*(x-7)+(y-7)*(y-7) <= 6 })
	case GlyphSun:
		fill(func(x, y int) bool {
			d := (x-7)*(x-7) + (y-7)*(y-7)
			return d <= 9 || (d <= 42 && (x == 7 || y == 7 || abs(x-7) == abs(y-7)))
		})
	case GlyphRight:
		fill(func(x, y int) bool { return x >= 3 && x <= 12 && abs(y-7) <= (12-x)/2 })
	case GlyphLeft:
		fill(func(x, y int) bool { return x >= 3 && x <= 12 && abs(y-7) <= (x-3)/2 })
	case GlyphUp:
		fill(func(x, y int) bool { return y >= 3 && y <= 12 && abs(x-7) <= (y-3)/2 })
	case GlyphDown:
		fill(func(x, y int) bool { return y >= 3 && y <= 12 && abs(x-7) <= (12-y)/2 })
	case GlyphShadeLight:
		fill(func(x, y int) bool { return (x+y)%4 == 0 })
	case GlyphShadeMedium:
		fill(func(x, y int) bool { return (x+y)%2 == 0 })
	case GlyphBlock:
		fill(func(x, y int) bool { return true })
	case GlyphSquare:
		fill(func(x, y int) bool { return x >= 4 && x < 12 && y >= 4 && y < 12 })
	case GlyphHLine:
		fill(func(x, y int) bool { return y == 7 || y == 8 })
	case GlyphVLine:
		fill(func(x, y int) bool { return x == 7 || x == 8 })
	}
}
