package core

import (
	"testing"

	"pgregory.net/rapid"
)

func TestGrid_RectangularProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 12).Draw(t, "w")
		h := rapid.IntRange(1, 12).Draw(t, "h")
		rows := make([][]Tile, h)
		for y := range rows {
			rows[y] = make([]Tile, w)
		}
		ragged := rapid.Bool().Draw(t, "ragged")
		if ragged && h > 1 {
			y := rapid.IntRange(1, h-1).Draw(t, "row")
			rows[y] = append(rows[y], Tile{})
		}

		g, err := NewGrid(rows)
		if ragged && h > 1 {
			if err == nil {
				t.Fatalf("ragged %dx%d grid accepted", w, h)
			}
			return
		}
		if err != nil {
			t.Fatalf("rectangular grid rejected: %v", err)
		}

		x := rapid.IntRange(-2, w+2).Draw(t, "x")
		y := rapid.IntRange(-2, h+2).Draw(t, "y")
		_, ok := g.At(x, y)
		want := x >= 0 && x < w && y >= 0 && y < h
		if ok != want {
			t.Fatalf("At(%d,%d) on %dx%d = %v, want %v", x, y, w, h, ok, want)
		}
	})
}

func TestAbilities_PartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := AbilityType(rapid.IntRange(0, 6).Draw(t, "ability"))
		light, heavy := CanUse(Light, a), CanUse(Heavy, a)
		switch a {
		case FireBullet, FireHealingBullet, FireStunBullet:
			if !light || !heavy {
				t.Fatalf("%s should be common", a)
			}
		default:
			if light == heavy {
				t.Fatalf("%s should belong to exactly one kind", a)
			}
		}
	})
}

func TestGoTo_InBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 20).Draw(t, "w")
		h := rapid.IntRange(1, 20).Draw(t, "h")
		rows := make([][]Tile, h)
		for y := range rows {
			rows[y] = make([]Tile, w)
		}
		g, err := NewGrid(rows)
		if err != nil {
			t.Fatal(err)
		}
		x := rapid.IntRange(-5, w+5).Draw(t, "x")
		y := rapid.IntRange(-5, h+5).Draw(t, "y")

		_, err = NewGoTo(g, x, y)
		if g.InBounds(x, y) != (err == nil) {
			t.Fatalf("NewGoTo(%d,%d) on %dx%d: err=%v", x, y, w, h, err)
		}
	})
}
