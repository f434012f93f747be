package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/roomweaver/pkg/graph"
	"github.com/matzehuels/roomweaver/pkg/graph/decompose"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i, name := range []string{"hall", "", "vault", ""} {
		if err := g.AddNode(graph.Node{ID: i + 1, Group: "room", Name: name, Floor: i / 2}); err != nil {
			t.Fatal(err)
		}
	}
	edges := []graph.Edge{
		{From: 1, To: 2},
		{From: 2, To: 3, Direction: shape.ForwardFixed},
		{From: 3, To: 4, RequireRoom: true, Group: "room"},
		{From: 4, To: 1},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Detailed: true})

	for _, want := range []string{
		"graph G {",
		`1 [label="hall\nfloor: 0\ngroup: room"]`,
		`2 [label="node 2\nfloor: 0\ngroup: room"]`,
		"1 -- 2 [style=solid]",
		"2 -- 3 [dir=forward]",
		"3 -- 4 [style=dashed]",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Index(dot, "4 [label") > strings.Index(dot, "1 -- 2") {
		t.Error("nodes should be declared before edges")
	}
}

func TestChainsDOT(t *testing.T) {
	g := testGraph(t)
	chains, err := decompose.Chains(g, decompose.Options{})
	if err != nil {
		t.Fatal(err)
	}
	dot := ChainsDOT(g, chains, Options{})

	if n := strings.Count(dot, " -- "); n != g.EdgeCount() {
		t.Errorf("DOT has %d edges, want %d", n, g.EdgeCount())
	}
	if !strings.Contains(dot, `label="0.0"`) || !strings.Contains(dot, Palette[0]) {
		t.Errorf("first chain not labelled:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(testGraph(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<") || !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
