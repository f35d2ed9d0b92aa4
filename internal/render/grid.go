package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Cell represents a single character cell on screen.
type Cell struct {
	Glyph byte  // CP437 code (0-255)
	FG    uint8 // Foreground color index (0-15)
	BG    uint8 // Background color index (0-15)
}

// CellBuffer is a 2D grid of character cells. The HUD overlay and the
// terminal view both draw into one.
type CellBuffer struct {
	Cols  int
	Rows  int
	Cells []Cell
}

// NewCellBuffer creates a new cell buffer filled with blank cells.
func NewCellBuffer(cols, rows int) *CellBuffer {
	b := &CellBuffer{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
	b.Clear()
	return b
}

// Resize reallocates the buffer when the dimensions change and clears it.
func (b *CellBuffer) Resize(cols, rows int) {
	if cols != b.Cols || rows != b.Rows {
		b.Cols, b.Rows = cols, rows
		b.Cells = make([]Cell, cols*rows)
	}
	b.Clear()
}

// Set writes a single cell at (x, y). Out-of-bounds writes are ignored.
func (b *CellBuffer) Set(x, y int, glyph byte, fg, bg uint8) {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		b.Cells[y*b.Cols+x] = Cell{Glyph: glyph, FG: fg, BG: bg}
	}
}

// Get reads a single cell at (x, y). Out-of-bounds reads return a blank cell.
func (b *CellBuffer) Get(x, y int) Cell {
	if x >= 0 && x < b.Cols && y >= 0 && y < b.Rows {
		return b.Cells[y*b.Cols+x]
	}
	return Cell{}
}

// Clear resets all cells to blank (space on black).
func (b *CellBuffer) Clear() {
	for i := range b.Cells {
		b.Cells[i] = Cell{Glyph: ' ', FG: ColorWhite, BG: ColorBlack}
	}
}

// WriteString writes a string starting at (x, y). Runes outside CP437's
// ASCII range become '?'. It returns the column after the last rune.
func (b *CellBuffer) WriteString(x, y int, s string, fg, bg uint8) int {
	for _, ch := range s {
		if ch > 126 {
			ch = '?'
		}
		b.Set(x, y, byte(ch), fg, bg)
		x++
	}
	return x
}

// Overlay copies every non-blank cell of src onto b.
func (b *CellBuffer) Overlay(src *CellBuffer) {
	for y := 0; y < src.Rows; y++ {
		for x := 0; x < src.Cols; x++ {
			c := src.Cells[y*src.Cols+x]
			if c.Glyph != ' ' || c.BG != ColorBlack {
				b.Set(x, y, c.Glyph, c.FG, c.BG)
			}
		}
	}
}

// GridRenderer draws a CellBuffer over the scene. Blank cells on a black
// background are left transparent.
type GridRenderer struct {
	Atlas   *FontAtlas
	CellW   int
	CellH   int
	bgPixel *ebiten.Image
}

// NewGridRenderer creates a renderer with the given atlas and cell dimensions.
func NewGridRenderer(atlas *FontAtlas, cellW, cellH int) *GridRenderer {
	bgPixel := ebiten.NewImage(1, 1)
	bgPixel.Fill(color.White)
	return &GridRenderer{
		Atlas:   atlas,
		CellW:   cellW,
		CellH:   cellH,
		bgPixel: bgPixel,
	}
}

// Close releases the background pixel.
func (r *GridRenderer) Close() error {
	if r.bgPixel != nil {
		r.bgPixel.Deallocate()
		r.bgPixel = nil
	}
	return nil
}

// Draw renders the entire CellBuffer to the screen.
func (r *GridRenderer) Draw(screen *ebiten.Image, buf *CellBuffer) {
	for y := 0; y < buf.Rows; y++ {
		for x := 0; x < buf.Cols; x++ {
			cell := buf.Cells[y*buf.Cols+x]
			px := float64(x * r.CellW)
			py := float64(y * r.CellH)
			if cell.BG != ColorBlack {
				var op ebiten.DrawImageOptions
				op.GeoM.Scale(float64(r.CellW), float64(r.CellH))
				op.GeoM.Translate(px, py)
				op.ColorScale.ScaleWithColor(Palette[cell.BG])
				screen.DrawImage(r.bgPixel, &op)
			}
			r.DrawGlyph(screen, cell.Glyph, Palette[cell.FG], px, py)
		}
	}
}

// DrawGlyph renders one glyph at sub-pixel screen coordinates.
func (r *GridRenderer) DrawGlyph(screen *ebiten.Image, glyph byte, clr color.Color, px, py float64) {
	if glyph == ' ' || glyph == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(r.CellW)/GlyphWidth, float64(r.CellH)/GlyphHeight)
	op.GeoM.Translate(px, py)
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(r.Atlas.Glyph(glyph), &op)
}

// DrawText renders s starting at (px, py), one cell per rune.
func (r *GridRenderer) DrawText(screen *ebiten.Image, s string, clr color.Color, px, py float64) {
	for _, ch := range s {
		if ch > 126 {
			ch = '?'
		}
		r.DrawGlyph(screen, byte(ch), clr, px, py)
		px += float64(r.CellW)
	}
}
