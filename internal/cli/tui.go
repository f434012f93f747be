package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/roomweaver/pkg/layout"
)

// Map glyphs. Rooms on the shown floor get a symbol from roomSymbols by
// their position in the floor's room list.
const (
	glyphEmpty = '·'
	glyphShaft = '≡'
)

var roomSymbols = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// Map styles
var (
	mapSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(colorCyan)
	mapRoomStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	mapDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	mapShaftStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// Floor Grid
// =============================================================================

// floorGrid is the ASCII picture of one floor over the layout's bounds, so
// every floor of a layout has the same size.
type floorGrid struct {
	cells [][]rune
	rooms []*layout.Room          // rooms on the floor, in symbol order
	owner map[layout.Position]int // grid cell -> index into rooms
}

func newFloorGrid(l *layout.Layout, z int) *floorGrid {
	g := &floorGrid{owner: make(map[layout.Position]int)}
	b, ok := l.Bounds()
	if !ok {
		return g
	}
	g.cells = make([][]rune, b.Max.Row-b.Min.Row+1)
	for r := range g.cells {
		g.cells[r] = []rune(strings.Repeat(string(glyphEmpty), b.Max.Col-b.Min.Col+1))
	}

	for _, s := range l.Shafts() {
		if z < s.Min.Floor || z > s.Max.Floor {
			continue
		}
		for row := s.Min.Row; row <= s.Max.Row; row++ {
			for col := s.Min.Col; col <= s.Max.Col; col++ {
				g.cells[row-b.Min.Row][col-b.Min.Col] = glyphShaft
			}
		}
	}
	for _, room := range l.Rooms() {
		if room.Floor() != z {
			continue
		}
		i := len(g.rooms)
		g.rooms = append(g.rooms, room)
		sym := roomSymbols[i%len(roomSymbols)]
		for _, p := range room.Cells() {
			g.cells[p.Row-b.Min.Row][p.Col-b.Min.Col] = sym
			g.owner[layout.Position{Row: p.Row - b.Min.Row, Col: p.Col - b.Min.Col}] = i
		}
	}
	return g
}

// String returns the plain grid, one line per row.
func (g *floorGrid) String() string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// render styles the grid, highlighting the selected room.
func (g *floorGrid) render(selected int) string {
	var b strings.Builder
	for r, row := range g.cells {
		for c, ch := range row {
			s := string(ch)
			switch ch {
			case glyphEmpty:
				b.WriteString(mapDimStyle.Render(s))
			case glyphShaft:
				b.WriteString(mapShaftStyle.Render(s))
			default:
				if g.owner[layout.Position{Row: r, Col: c}] == selected {
					b.WriteString(mapSelectedStyle.Render(s))
				} else {
					b.WriteString(mapRoomStyle.Render(s))
				}
			}
		}
		if r < len(g.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// =============================================================================
// InspectModel - Interactive floor browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a layout floor by floor.
type InspectModel struct {
	Layout *layout.Layout
	Floors []int
	Floor  int // index into Floors
	Cursor int // index into the floor's rooms

	grid *floorGrid
}

// NewInspectModel creates a browser positioned on the lowest floor.
func NewInspectModel(l *layout.Layout) InspectModel {
	m := InspectModel{Layout: l, Floors: l.Floors()}
	m.grid = m.buildGrid()
	return m
}

func (m InspectModel) buildGrid() *floorGrid {
	if len(m.Floors) == 0 {
		return &floorGrid{}
	}
	return newFloorGrid(m.Layout, m.Floors[m.Floor])
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.grid.rooms)-1 {
			m.Cursor++
		}
	case "right", "l", "pgup", "]":
		if m.Floor < len(m.Floors)-1 {
			m.Floor++
			m.Cursor = 0
			m.grid = m.buildGrid()
		}
	case "left", "h", "pgdown", "[":
		if m.Floor > 0 {
			m.Floor--
			m.Cursor = 0
			m.grid = m.buildGrid()
		}
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	if len(m.Floors) == 0 {
		return StyleTitle.Render(m.Layout.Name) + "\n" + listDim("layout has no rooms") + "\n"
	}
	b.WriteString(StyleTitle.Render(m.Layout.Name))
	b.WriteString(listDim(fmt.Sprintf("  floor %d  [%d/%d]", m.Floors[m.Floor], m.Floor+1, len(m.Floors))))
	b.WriteString("\n")
	b.WriteString(listDim("←/→ floor  ↑/↓ room  q quit"))
	b.WriteString("\n\n")

	mapPanel := panelStyle.Render(m.grid.render(m.Cursor))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, mapPanel, " ", m.roomTable()))
	b.WriteString("\n")
	if room := m.selected(); room != nil {
		b.WriteString(m.roomDetail(room))
	}
	return b.String()
}

func (m InspectModel) selected() *layout.Room {
	if m.Cursor < 0 || m.Cursor >= len(m.grid.rooms) {
		return nil
	}
	return m.grid.rooms[m.Cursor]
}

func (m InspectModel) roomTable() string {
	rows := make([][]string, len(m.grid.rooms))
	for i, r := range m.grid.rooms {
		rows[i] = []string{
			string(roomSymbols[i%len(roomSymbols)]),
			r.Label(),
			r.Shape.Name(),
			fmt.Sprintf("%d", len(m.Layout.Neighbors(r.ID))),
		}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Room", "Shape", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func (m InspectModel) roomDetail(r *layout.Room) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s at %s\n", StyleHighlight.Render(r.ID.String()), listDim(r.Shape.Name()), r.Position)
	var links []string
	for _, n := range m.Layout.Neighbors(r.ID) {
		links = append(links, n.String())
	}
	if len(links) > 0 {
		b.WriteString(listDim("  connects to " + strings.Join(links, ", ")))
		b.WriteString("\n")
	}
	for _, slot := range slices.Sorted(maps.Keys(r.Collectables)) {
		b.WriteString(listDim(fmt.Sprintf("  slot %d holds collectable %d", slot, r.Collectables[slot])))
		b.WriteString("\n")
	}
	return b.String()
}

func listDim(s string) string { return mapDimStyle.Render(s) }
