// Package render draws a snapshot as a bordered text board.
package render

import (
	"strings"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/charmbracelet/lipgloss"
)

const cellWidth = 3

// Legend explains the board symbols.
const Legend = "# solid wall  = penetrable wall  @ your tank  T other tank\n" +
	"• basic bullet  ◉ double bullet  + healing bullet  ⚡ stun bullet\n" +
	"X mine  * exploding mine  ═ horizontal laser  ║ vertical laser"

// Renderer holds the board styles. The zero value is not usable; call New.
type Renderer struct {
	board  lipgloss.Style
	cell   lipgloss.Style
	own    lipgloss.Style
	other  lipgloss.Style
	hazard lipgloss.Style
	zone   lipgloss.Style
	fog    lipgloss.Style
}

func New() *Renderer {
	cell := lipgloss.NewStyle().Width(cellWidth)
	return &Renderer{
		board:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
		cell:   cell,
		own:    cell.Foreground(lipgloss.Color("10")).Bold(true),
		other:  cell.Foreground(lipgloss.Color("9")),
		hazard: cell.Foreground(lipgloss.Color("11")),
		zone:   cell.Foreground(lipgloss.Color("12")),
		fog:    cell.Faint(true),
	}
}

// Board renders the grid with controlledID's tank marked '@'.
func (r *Renderer) Board(s core.Snapshot, controlledID string) string {
	if s.Grid.Height() == 0 {
		return r.board.Render("")
	}
	lines := make([]string, 0, s.Grid.Height())
	for _, row := range s.Grid.Rows() {
		var b strings.Builder
		for _, tile := range row {
			b.WriteString(r.cellFor(tile, controlledID))
		}
		lines = append(lines, b.String())
	}
	return r.board.Render(strings.Join(lines, "\n"))
}

// Frame is the board followed by the legend.
func (r *Renderer) Frame(s core.Snapshot, controlledID string) string {
	return lipgloss.JoinVertical(lipgloss.Left, r.Board(s, controlledID), Legend)
}

func (r *Renderer) cellFor(t core.Tile, controlledID string) string {
	sym := Symbol(t, controlledID)
	var style lipgloss.Style
	switch {
	case !t.Visible:
		style = r.fog
	case strings.HasPrefix(sym, "@"):
		style = r.own
	case strings.HasPrefix(sym, "T"):
		style = r.other
	case sym == string(t.Zone) && t.InZone():
		style = r.zone
	case sym != " " && sym != "#" && sym != "=":
		style = r.hazard
	default:
		style = r.cell
	}
	return style.Render(sym)
}

// Symbol is the plain text for one tile. Walls and tanks win over anything
// else on the tile; otherwise the last hazard reported wins. Empty tiles
// show their zone name.
func Symbol(t core.Tile, controlledID string) string {
	v := symbolVisitor{self: controlledID}
	for _, o := range t.Objects {
		o.Accept(&v)
		if v.final {
			break
		}
	}
	if v.sym != "" {
		return v.sym
	}
	if t.InZone() {
		return string(t.Zone)
	}
	return " "
}

type symbolVisitor struct {
	self  string
	sym   string
	final bool
}

func (v *symbolVisitor) VisitWall(w core.Wall) {
	v.sym, v.final = "#", true
	if w.Type == core.PenetrableWall {
		v.sym = "="
	}
}

func (v *symbolVisitor) VisitTank(t core.Tank) {
	owner := "T"
	if t.OwnerID == v.self {
		owner = "@"
	}
	kind := "H"
	if t.Type == core.Light {
		kind = "L"
	}
	v.sym, v.final = owner+arrow(t.Direction)+kind, true
}

func (v *symbolVisitor) VisitBullet(b core.Bullet) {
	switch b.Type {
	case core.DoubleBullet:
		v.sym = "◉"
	case core.HealingBullet:
		v.sym = "+"
	case core.StunBullet:
		v.sym = "⚡"
	default:
		v.sym = "•"
	}
}

func (v *symbolVisitor) VisitMine(m core.Mine) {
	v.sym = "X"
	if m.Armed() {
		v.sym = "*"
	}
}

func (v *symbolVisitor) VisitLaser(l core.Laser) {
	v.sym = "═"
	if l.Orientation == core.Vertical {
		v.sym = "║"
	}
}

func arrow(d core.Direction) string {
	switch d {
	case core.Up:
		return "^"
	case core.Down:
		return "v"
	case core.Left:
		return "<"
	default:
		return ">"
	}
}
