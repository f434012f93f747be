package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	pio "github.com/matzehuels/roomweaver/pkg/io"
)

const ringBlueprint = `
name = "ring"
seed = 5

[options]
max_rebases = 2000

[[shapes]]
name = "square"
grid = ["#"]
doors = [
  { row = 0, col = 0, direction = "north" },
  { row = 0, col = 0, direction = "east" },
  { row = 0, col = 0, direction = "south" },
  { row = 0, col = 0, direction = "west" },
]

[[groups]]
name = "room"
entries = [{ shape = "square" }]

[[nodes]]
id = 1
group = "room"

[[nodes]]
id = 2
group = "room"

[[nodes]]
id = 3
group = "room"

[[nodes]]
id = 4
group = "room"

[[edges]]
from = 1
to = 2

[[edges]]
from = 2
to = 3

[[edges]]
from = 3
to = 4

[[edges]]
from = 4
to = 1
`

func writeBlueprint(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "ring.toml")
	if err := os.WriteFile(path, []byte(ringBlueprint), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustExist(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"generate", "chains", "render", "inspect", "serve", "cache", "store", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
	if root.PersistentFlags().Lookup("log-file") == nil {
		t.Error("missing --log-file")
	}
}

func TestGenerateRenderInspect(t *testing.T) {
	dir, bp := writeBlueprint(t)
	out := filepath.Join(dir, "out")

	if err := execute(t, "generate", bp, "--no-cache", "-o", out, "-f", "png,json,dot"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	mustExist(t,
		filepath.Join(out, "floor-0.png"),
		filepath.Join(out, "layout.json"),
		filepath.Join(out, "chains.dot"))

	doc := filepath.Join(out, "layout.json")
	rendered := filepath.Join(dir, "rendered")
	if err := execute(t, "render", doc, "--no-cache", "-o", rendered, "--cell-size", "8"); err != nil {
		t.Fatalf("render: %v", err)
	}
	mustExist(t, filepath.Join(rendered, "floor-0.png"))

	if err := execute(t, "render", doc, "--no-cache", "-f", "svg"); err == nil {
		t.Error("render should reject chain diagram formats")
	}
	if err := execute(t, "inspect", doc, "--print"); err != nil {
		t.Errorf("inspect: %v", err)
	}
}

func TestGenerateBatch(t *testing.T) {
	dir, bp := writeBlueprint(t)
	out := filepath.Join(dir, "batch")
	if err := execute(t, "generate", bp, "--no-cache", "-o", out, "-n", "2", "-s", "7", "-f", "png"); err != nil {
		t.Fatalf("generate batch: %v", err)
	}
	mustExist(t,
		filepath.Join(out, "seed-7", "floor-0.png"),
		filepath.Join(out, "seed-8", "floor-0.png"))
}

func TestGenerateMissingBlueprint(t *testing.T) {
	if err := execute(t, "generate", filepath.Join(t.TempDir(), "missing.toml"), "--no-cache"); err == nil {
		t.Error("generate should fail for a missing blueprint")
	}
}

func TestChains(t *testing.T) {
	dir, bp := writeBlueprint(t)
	out := filepath.Join(dir, "chains.dot")
	if err := execute(t, "chains", bp, "-o", out); err != nil {
		t.Fatalf("chains: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("1 -- 2")) && !bytes.Contains(data, []byte("2 -- 1")) {
		t.Errorf("diagram missing edge 1-2:\n%s", data)
	}
	if !bytes.Contains(data, []byte(`label="0.0"`)) {
		t.Errorf("chain diagram should label edges by chain:\n%s", data)
	}

	plain := filepath.Join(dir, "graph.dot")
	if err := execute(t, "chains", bp, "--plain", "-o", plain); err != nil {
		t.Fatalf("chains --plain: %v", err)
	}
	if data, _ := os.ReadFile(plain); bytes.Contains(data, []byte(`label="0.0"`)) {
		t.Errorf("plain diagram should not label chains:\n%s", data)
	}

	if err := execute(t, "chains", bp, "-o", filepath.Join(dir, "chains.txt")); err == nil {
		t.Error("chains should reject unknown diagram extensions")
	}
}

func TestStoreCommands(t *testing.T) {
	dir, bp := writeBlueprint(t)
	db := "sqlite://" + filepath.Join(dir, "layouts.db")
	out := filepath.Join(dir, "out")

	if err := execute(t, "generate", bp, "--no-cache", "-o", out, "-f", "json", "--store", db); err != nil {
		t.Fatalf("generate: %v", err)
	}
	l, err := pio.ImportLayout(filepath.Join(out, "layout.json"))
	if err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"store", "list", "--store", db},
		{"store", "show", l.ID, "--store", db},
		{"store", "export", l.ID, "-o", filepath.Join(dir, "export.json"), "--store", db},
		{"inspect", l.ID, "--print", "--store", db},
		{"store", "delete", l.ID, "--store", db},
	} {
		if err := execute(t, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	mustExist(t, filepath.Join(dir, "export.json"))

	if err := execute(t, "store", "show", l.ID, "--store", db); err == nil {
		t.Error("show after delete should fail")
	}
	if err := execute(t, "store", "import", filepath.Join(dir, "export.json"), "--store", db); err != nil {
		t.Errorf("import: %v", err)
	}
}
