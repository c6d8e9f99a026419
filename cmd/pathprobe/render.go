package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/gridpath/pathfinder"
)

const (
	maxCols   = 160
	maxRows   = 80
	cellPixel = 16
)

// frame is the cell window shown for one probe.
type frame struct {
	minX, minY, maxX, maxY int
}

func newFrame(pf *pathfinder.Pathfinder, path []cp.Vector, from, to cp.Vector) frame {
	f := frame{minX: math.MaxInt, minY: math.MaxInt, maxX: math.MinInt, maxY: math.MinInt}
	grow := func(x, y int) {
		f.minX, f.minY = min(f.minX, x), min(f.minY, y)
		f.maxX, f.maxY = max(f.maxX, x), max(f.maxY, y)
	}
	pf.CombinedFlags().Each(func(x, y, _ int) bool {
		grow(x, y)
		return true
	})
	for _, p := range append([]cp.Vector{from, to}, path...) {
		grow(int(math.Floor(p.X)), int(math.Floor(p.Y)))
	}
	f.minX, f.minY = f.minX-1, f.minY-1
	f.maxX, f.maxY = f.maxX+1, f.maxY+1

	// keep the window around the probe when the scene is large
	cx := int(math.Floor((from.X + to.X) / 2))
	cy := int(math.Floor((from.Y + to.Y) / 2))
	if f.maxX-f.minX+1 > maxCols {
		f.minX, f.maxX = cx-maxCols/2, cx+maxCols/2-1
	}
	if f.maxY-f.minY+1 > maxRows {
		f.minY, f.maxY = cy-maxRows/2, cy+maxRows/2-1
	}
	return f
}

func (f frame) contains(x, y int) bool {
	return x >= f.minX && x <= f.maxX && y >= f.minY && y <= f.maxY
}

// trace samples the cells a polyline passes through.
func trace(path []cp.Vector) map[[2]int]bool {
	cells := make(map[[2]int]bool)
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		d := b.Sub(a)
		n := max(1, int(math.Ceil(math.Hypot(d.X, d.Y)*4)))
		for s := 0; s <= n; s++ {
			p := a.Add(d.Mult(float64(s) / float64(n)))
			cells[[2]int{int(math.Floor(p.X)), int(math.Floor(p.Y))}] = true
		}
	}
	return cells
}

// writeASCII prints the window top row first. '#' is static geometry, 'a' a
// cell blocked only by actors, '*' the path, 'S' and 'G' its ends.
func writeASCII(out io.Writer, pf *pathfinder.Pathfinder, f frame, path []cp.Vector, from, to cp.Vector) error {
	onPath := trace(path)
	start := [2]int{int(math.Floor(from.X)), int(math.Floor(from.Y))}
	goal := [2]int{int(math.Floor(to.X)), int(math.Floor(to.Y))}

	var sb strings.Builder
	fmt.Fprintf(&sb, "x %d..%d, y %d..%d\n", f.minX, f.maxX, f.minY, f.maxY)
	for y := f.maxY; y >= f.minY; y-- {
		for x := f.minX; x <= f.maxX; x++ {
			c := [2]int{x, y}
			switch {
			case c == start:
				sb.WriteByte('S')
			case c == goal:
				sb.WriteByte('G')
			case onPath[c]:
				sb.WriteByte('*')
			case pf.EntryFlags().Get(x, y) != 0:
				sb.WriteByte('#')
			case pf.CombinedFlags().Get(x, y) != 0:
				sb.WriteByte('a')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func writePNG(filename string, pf *pathfinder.Pathfinder, f frame, path []cp.Vector, from, to cp.Vector) error {
	cols, rows := f.maxX-f.minX+1, f.maxY-f.minY+1
	img := image.NewRGBA(image.Rect(0, 0, cols*cellPixel, rows*cellPixel))

	fillCell := func(x, y int, c color.Color) {
		px := (x - f.minX) * cellPixel
		py := (f.maxY - y) * cellPixel
		for j := 1; j < cellPixel; j++ {
			for i := 1; i < cellPixel; i++ {
				img.Set(px+i, py+j, c)
			}
		}
	}
	for y := 0; y < rows*cellPixel; y++ {
		for x := 0; x < cols*cellPixel; x++ {
			img.Set(x, y, colornames.Gainsboro)
		}
	}
	for y := f.minY; y <= f.maxY; y++ {
		for x := f.minX; x <= f.maxX; x++ {
			switch {
			case pf.EntryFlags().Get(x, y) != 0:
				fillCell(x, y, colornames.Dimgray)
			case pf.CombinedFlags().Get(x, y) != 0:
				fillCell(x, y, colornames.Orange)
			default:
				fillCell(x, y, colornames.White)
			}
		}
	}

	plot := func(p cp.Vector, c color.Color, r int) {
		px := int((p.X - float64(f.minX)) * cellPixel)
		py := int((float64(f.maxY+1) - p.Y) * cellPixel)
		for j := -r; j <= r; j++ {
			for i := -r; i <= r; i++ {
				img.Set(px+i, py+j, c)
			}
		}
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		d := b.Sub(a)
		n := max(1, int(math.Ceil(math.Hypot(d.X, d.Y)*cellPixel)))
		for s := 0; s <= n; s++ {
			plot(a.Add(d.Mult(float64(s)/float64(n))), colornames.Crimson, 1)
		}
	}
	for _, p := range path {
		plot(p, colornames.Darkred, 3)
	}
	plot(from, colornames.Seagreen, 4)
	plot(to, colornames.Royalblue, 4)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("pathprobe: create %s: %w", filename, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("pathprobe: encode %s: %w", filename, err)
	}
	return nil
}
