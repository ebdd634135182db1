// pkg/core/grid.go
package core

import "fmt"

// NoZone is the tile zone name for tiles outside every zone.
const NoZone byte = '?'

// Tile is one grid cell. Objects keep the order the server reported them in.
// When Visible is false the objects are last-known or absent, never authoritative.
type Tile struct {
	Objects []Occupant
	Visible bool
	Zone    byte
}

// InZone reports whether the tile belongs to a zone.
func (t Tile) InZone() bool {
	return t.Zone != NoZone && t.Zone != 0
}

// Has reports whether any occupant of kind k is on the tile.
func (t Tile) Has(k OccupantKind) bool {
	for _, o := range t.Objects {
		if o.Kind() == k {
			return true
		}
	}
	return false
}

// Grid is a rectangular, row-major tile array: rows top to bottom, columns
// left to right. Tile (x, y) is column x of row y.
type Grid struct {
	rows   [][]Tile
	width  int
	height int
}

// NewGrid validates that every row has the same length.
func NewGrid(rows [][]Tile) (Grid, error) {
	g := Grid{rows: rows, height: len(rows)}
	if len(rows) == 0 {
		return g, nil
	}
	g.width = len(rows[0])
	for y, row := range rows {
		if len(row) != g.width {
			return Grid{}, decodeErrorf(fmt.Sprintf("map.tiles[%d]", y),
				"ragged row: has %d tiles, row 0 has %d", len(row), g.width)
		}
	}
	return g, nil
}

func (g Grid) Width() int  { return g.width }
func (g Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies in [0, width) x [0, height).
func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns tile (x, y).
func (g Grid) At(x, y int) (Tile, bool) {
	if !g.InBounds(x, y) {
		return Tile{}, false
	}
	return g.rows[y][x], true
}

// Rows exposes the backing rows for read-only iteration.
func (g Grid) Rows() [][]Tile {
	return g.rows
}

// Scan visits tiles row-major until fn returns false.
func (g Grid) Scan(fn func(x, y int, t Tile) bool) {
	for y, row := range g.rows {
		for x, tile := range row {
			if !fn(x, y, tile) {
				return
			}
		}
	}
}
