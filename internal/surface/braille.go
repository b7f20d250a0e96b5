package surface

import (
	"image/color"
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Layer tags what last touched a cell so the view can colour orbs and
// links differently.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerLink
	LayerOrb
)

// DefaultLinkCutoff hides links fainter than this opacity; braille dots
// have no alpha.
const DefaultLinkCutoff = 0.03

// Braille is a Surface backed by a grid of braille cells. Surface
// coordinates are viewport units; one cell covers CellW x CellH units.
type Braille struct {
	CellW, CellH float64
	LinkCutoff   float64

	w, h  float64
	cols  int
	rows  int
	grid  [][]rune
	layer [][]Layer
}

func NewBraille(cellW, cellH float64) *Braille {
	return &Braille{CellW: cellW, CellH: cellH, LinkCutoff: DefaultLinkCutoff}
}

func (b *Braille) Size() (float64, float64) { return b.w, b.h }

// Cells returns the grid dimensions in terminal cells.
func (b *Braille) Cells() (cols, rows int) { return b.cols, b.rows }

// Resize reallocates the grid for a w x h viewport.
func (b *Braille) Resize(w, h float64) {
	b.w, b.h = w, h
	b.cols = int(math.Ceil(w / b.CellW))
	b.rows = int(math.Ceil(h / b.CellH))
	if b.cols < 0 {
		b.cols = 0
	}
	if b.rows < 0 {
		b.rows = 0
	}
	b.grid = make([][]rune, b.rows)
	b.layer = make([][]Layer, b.rows)
	for i := range b.grid {
		b.grid[i] = make([]rune, b.cols)
		b.layer[i] = make([]Layer, b.cols)
	}
	b.Clear()
}

// Clear resets the canvas
func (b *Braille) Clear() {
	for i := range b.grid {
		for j := range b.grid[i] {
			b.grid[i][j] = blank
			b.layer[i][j] = LayerNone
		}
	}
}

// set lights the sub-pixel (x, y); the grid is (cols*2) x (rows*4) sub-pixels.
func (b *Braille) set(x, y int, l Layer) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= b.cols || row >= b.rows {
		return
	}

	b.grid[row][col] |= rune(pixelMap[y%4][x%2])
	if l > b.layer[row][col] {
		b.layer[row][col] = l
	}
}

func (b *Braille) toSub(x, y float64) (int, int) {
	return int(math.Floor(x * 2 / b.CellW)), int(math.Floor(y * 4 / b.CellH))
}

// FillCircle lights every sub-pixel whose centre falls inside the disc,
// and always the one under the centre.
func (b *Braille) FillCircle(x, y, r float64, _ color.NRGBA) {
	cx, cy := b.toSub(x, y)
	b.set(cx, cy, LayerOrb)

	rx := r * 2 / b.CellW
	ry := r * 4 / b.CellH
	if rx <= 0 || ry <= 0 {
		return
	}
	fx, fy := x*2/b.CellW, y*4/b.CellH
	for sy := int(math.Floor(fy - ry)); sy <= int(math.Ceil(fy+ry)); sy++ {
		for sx := int(math.Floor(fx - rx)); sx <= int(math.Ceil(fx+rx)); sx++ {
			dx := (float64(sx) + 0.5 - fx) / rx
			dy := (float64(sy) + 0.5 - fy) / ry
			if dx*dx+dy*dy <= 1 {
				b.set(sx, sy, LayerOrb)
			}
		}
	}
}

// StrokeLine draws a line using Bresenham's algorithm. Width is ignored.
func (b *Braille) StrokeLine(x0, y0, x1, y1, _ float64, c color.NRGBA) {
	if Opacity(c) < b.LinkCutoff {
		return
	}
	sx0, sy0 := b.toSub(x0, y0)
	sx1, sy1 := b.toSub(x1, y1)
	b.line(sx0, sy0, sx1, sy1)
}

func (b *Braille) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		b.set(x0, y0, LayerLink)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Cell returns the rune and layer at (col, row).
func (b *Braille) Cell(col, row int) (rune, Layer) {
	if col < 0 || row < 0 || col >= b.cols || row >= b.rows {
		return blank, LayerNone
	}
	return b.grid[row][col], b.layer[row][col]
}

// Lit counts the lit sub-pixels on the grid.
func (b *Braille) Lit() int {
	n := 0
	for _, row := range b.grid {
		for _, r := range row {
			bits := uint(r - blank)
			for bits != 0 {
				n += int(bits & 1)
				bits >>= 1
			}
		}
	}
	return n
}

// Render writes the grid row by row, passing each run of same-layer cells
// through style. A nil style writes the runes unchanged.
func (b *Braille) Render(style func(Layer, string) string) string {
	var sb strings.Builder
	for i, row := range b.grid {
		if i > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && b.layer[i][j] == b.layer[i][start] {
				continue
			}
			run := string(row[start:j])
			if style != nil {
				run = style(b.layer[i][start], run)
			}
			sb.WriteString(run)
			start = j
		}
	}
	return sb.String()
}

func (b *Braille) String() string {
	return b.Render(nil)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
