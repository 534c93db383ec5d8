package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/session"
)

const textureManifest = `
name = "texture"

[[node]]
name = "path"

[[node]]
name = "data"
depends_on = ["path"]

[[node]]
name = "texture"
depends_on = ["data"]

[[node]]
name = "textureview"
depends_on = ["texture"]

[[node]]
name = "fake"
depends_on = ["texture"]
fail_create = "this resource should never get created"
`

func mustBuild(t *testing.T, src string) *Graph {
	t.Helper()
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := m.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func nodesOf(events []session.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Op + ":" + ev.Node
	}
	return out
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(textureManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "texture" || len(m.Nodes) != 5 {
		t.Fatalf("manifest = %+v", m)
	}
	fake, ok := m.Node("fake")
	if !ok {
		t.Fatal("fake not found")
	}
	if fake.FailCreate == "" || !slices.Equal(fake.DependsOn, []string{"texture"}) {
		t.Errorf("fake = %+v", fake)
	}
	if _, ok := m.Node("missing"); ok {
		t.Error("Node(missing) should fail")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code apperr.Code
		msg  string
	}{
		{
			name: "bad toml",
			src:  "[[node]\nname = ",
			code: apperr.ErrCodeInvalidFormat,
		},
		{
			name: "no nodes",
			src:  `name = "empty"`,
			code: apperr.ErrCodeInvalidManifest,
			msg:  "no nodes",
		},
		{
			name: "unknown key",
			src:  "[[node]]\nname = \"a\"\ndepends-on = [\"b\"]\n",
			code: apperr.ErrCodeInvalidManifest,
			msg:  "depends-on",
		},
		{
			name: "invalid name",
			src:  "[[node]]\nname = \"has space\"\n",
			code: apperr.ErrCodeInvalidManifest,
		},
		{
			name: "duplicate node",
			src:  "[[node]]\nname = \"a\"\n[[node]]\nname = \"a\"\n",
			code: apperr.ErrCodeInvalidManifest,
			msg:  "duplicate",
		},
		{
			name: "bad tracking",
			src:  "[[node]]\nname = \"a\"\ntracking = \"sometimes\"\n",
			code: apperr.ErrCodeInvalidManifest,
		},
		{
			name: "unknown dependency",
			src:  "[[node]]\nname = \"a\"\ndepends_on = [\"ghost\"]\n",
			code: apperr.ErrCodeInvalidManifest,
			msg:  "ghost",
		},
		{
			name: "self dependency",
			src:  "[[node]]\nname = \"a\"\ndepends_on = [\"a\"]\n",
			code: apperr.ErrCodeInvalidManifest,
			msg:  "itself",
		},
		{
			name: "repeated dependency",
			src:  "[[node]]\nname = \"a\"\n[[node]]\nname = \"b\"\ndepends_on = [\"a\", \"a\"]\n",
			code: apperr.ErrCodeInvalidManifest,
			msg:  "twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !apperr.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %v, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestBuildCycle(t *testing.T) {
	m, err := Parse([]byte(`
[[node]]
name = "a"
depends_on = ["b"]

[[node]]
name = "b"
depends_on = ["a"]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = m.Build()
	if !apperr.Is(err, apperr.ErrCodeInvalidGraph) {
		t.Fatalf("err = %v, want INVALID_GRAPH", err)
	}
	if !errors.Is(err, depsgraph.ErrGraphHasCycle) {
		t.Errorf("err = %v, want ErrGraphHasCycle in the chain", err)
	}
}

func TestEnsureAndRebuild(t *testing.T) {
	g := mustBuild(t, textureManifest)
	s := session.New()

	events, err := Ensure(g, s, "textureview")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	want := []string{"create:path", "create:data", "create:texture", "create:textureview"}
	if got := nodesOf(events); !slices.Equal(got, want) {
		t.Errorf("ensure events = %v, want %v", got, want)
	}

	events, err = Ensure(g, s, "textureview")
	if err != nil || len(events) != 0 {
		t.Errorf("second Ensure = %v, %v, want no events", events, err)
	}

	events, err = Rebuild(g, s, "path")
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	want = []string{
		"destroy:textureview", "destroy:texture", "destroy:data", "destroy:path",
		"create:path", "create:data", "create:texture", "create:textureview",
	}
	if got := nodesOf(events); !slices.Equal(got, want) {
		t.Errorf("rebuild events = %v, want %v", got, want)
	}
	if s.Ready("fake") {
		t.Error("fake should never exist")
	}
}

func TestTrackingModes(t *testing.T) {
	g := mustBuild(t, `
[[node]]
name = "flagged"

[[node]]
name = "held"
tracking = "exists"

[[node]]
name = "oneshot"
tracking = "none"
depends_on = ["flagged", "held"]
`)
	s := session.New()

	for i := range 2 {
		if _, err := Ensure(g, s, "oneshot"); err != nil {
			t.Fatalf("Ensure #%d: %v", i, err)
		}
	}
	got := nodesOf(s.Events())
	want := []string{"create:flagged", "create:held", "create:oneshot", "create:oneshot"}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if !s.Present("held") || !*s.Flag("flagged") {
		t.Error("tracked nodes should be marked existing")
	}

	id, _ := g.Lookup("held")
	if g.Tracking(id) != depsgraph.TrackExists {
		t.Errorf("Tracking(held) = %v", g.Tracking(id))
	}

	if _, err := Rebuild(g, s, "held"); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !s.Present("held") {
		t.Error("held should be present again after rebuild")
	}
}

func TestFailuresAreClassified(t *testing.T) {
	g := mustBuild(t, textureManifest+`
[[node]]
name = "sticky"
depends_on = ["path"]
fail_destroy = "still in use"
`)
	s := session.New()

	events, err := Ensure(g, s, "fake")
	if !apperr.Is(err, apperr.ErrCodeCreateFailed) {
		t.Fatalf("err = %v, want CREATE_FAILED", err)
	}
	if last := events[len(events)-1]; last.Node != "fake" || !last.Failed() {
		t.Errorf("last event = %v, want failed create of fake", last)
	}

	if _, err := Ensure(g, s, "sticky"); err != nil {
		t.Fatalf("Ensure(sticky): %v", err)
	}
	_, err = Rebuild(g, s, "path")
	if !apperr.Is(err, apperr.ErrCodeDestroyFailed) {
		t.Fatalf("err = %v, want DESTROY_FAILED", err)
	}
	if got := apperr.UserMessage(err); got != "destroy sticky failed" {
		t.Errorf("UserMessage = %q", got)
	}

	if _, err := Ensure(g, s, "nope"); !apperr.Is(err, apperr.ErrCodeNodeNotFound) {
		t.Errorf("err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	coded := apperr.New(apperr.ErrCodeInvalidInput, "x")
	if Classify(coded) != coded {
		t.Error("coded errors should pass through")
	}
	if err := Classify(depsgraph.ErrUnknownNode); !apperr.Is(err, apperr.ErrCodeNodeNotFound) {
		t.Errorf("Classify(ErrUnknownNode) = %v", err)
	}
	if err := Classify(errors.New("odd")); !apperr.Is(err, apperr.ErrCodeInternal) {
		t.Errorf("Classify(plain) = %v", err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "texture.toml")
	if err := os.WriteFile(path, []byte(textureManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if m.Name != "texture" {
		t.Errorf("Name = %q", m.Name)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.toml")); !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ParseFile(filepath.Join(dir, "graph.yaml")); !apperr.Is(err, apperr.ErrCodeInvalidManifest) {
		t.Errorf("wrong extension err = %v, want INVALID_MANIFEST", err)
	}
}

func TestExampleManifests(t *testing.T) {
	for _, name := range []string{"texture.toml", "diamond.toml"} {
		t.Run(name, func(t *testing.T) {
			m, err := ParseFile(filepath.Join("..", "..", "examples", name))
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			if _, err := m.Build(); err != nil {
				t.Fatalf("Build: %v", err)
			}
		})
	}
}
