package depsgraph

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		declare func(b *Builder[*recorder])
		want    []error
	}{
		{
			name: "EmptyName",
			declare: func(b *Builder[*recorder]) {
				b.Node("")
			},
			want: []error{ErrInvalidNodeName},
		},
		{
			name: "DuplicateNode",
			declare: func(b *Builder[*recorder]) {
				flagged(b, "texture")
				flagged(b, "texture")
			},
			want: []error{ErrDuplicateNode},
		},
		{
			name: "UnknownNode",
			declare: func(b *Builder[*recorder]) {
				a := flagged(b, "a")
				b.DependsOn(a, 7)
			},
			want: []error{ErrUnknownNode},
		},
		{
			name: "SelfLoop",
			declare: func(b *Builder[*recorder]) {
				a := flagged(b, "a")
				b.DependsOn(a, a)
			},
			want: []error{ErrSelfLoop},
		},
		{
			name: "DuplicateEdge",
			declare: func(b *Builder[*recorder]) {
				a, c := flagged(b, "a"), flagged(b, "c")
				b.DependsOn(a, c).DependsOn(a, c)
			},
			want: []error{ErrDuplicateEdge},
		},
		{
			name: "ConflictingTracking",
			declare: func(b *Builder[*recorder]) {
				b.Node("both",
					WithReadyFlag(func(r *recorder) *bool { return r.flag("both") }),
					WithExists(func(*recorder) bool { return true }),
				)
			},
			want: []error{ErrConflictingTracking},
		},
		{
			name: "NilResource",
			declare: func(b *Builder[*recorder]) {
				b.Resource("nothing", nil)
			},
			want: []error{ErrNilResource},
		},
		{
			name: "Cycle",
			declare: func(b *Builder[*recorder]) {
				a, c := flagged(b, "a"), flagged(b, "c")
				b.DependsOn(a, c).DependsOn(c, a)
			},
			want: []error{ErrGraphHasCycle},
		},
		{
			name: "SeveralProblems",
			declare: func(b *Builder[*recorder]) {
				a := flagged(b, "a")
				flagged(b, "a")
				b.DependsOn(a, a)
			},
			want: []error{ErrDuplicateNode, ErrSelfLoop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder[*recorder]()
			tt.declare(b)
			g, err := b.Build()
			if err == nil {
				t.Fatal("Build should fail")
			}
			if g != nil {
				t.Error("Build should not return a graph on error")
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("err = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestBuildCycleErrorNamesPath(t *testing.T) {
	b := NewBuilder[NoOwner]()
	a := b.Node("a")
	c := b.Node("b")
	d := b.Node("c")
	b.DependsOn(a, c).DependsOn(c, d).DependsOn(d, a)

	_, err := b.Build()
	if !errors.Is(err, ErrGraphHasCycle) {
		t.Fatalf("err = %v, want ErrGraphHasCycle", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> c -> a") {
		t.Errorf("err = %q, want the cycle path", err)
	}
}

func TestBuildWithoutCycleCheck(t *testing.T) {
	b := NewBuilder[NoOwner]()
	a, c := b.Node("a"), b.Node("c")
	b.DependsOn(a, c).DependsOn(c, a)

	g, err := b.Build(WithoutCycleCheck())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}
}

func TestGraphAccessors(t *testing.T) {
	tg := buildTextureGraph(t)
	g := tg.g

	if g.Len() != 5 {
		t.Errorf("Len = %d, want 5", g.Len())
	}
	if len(g.Edges()) != 4 {
		t.Errorf("Edges = %v, want 4 edges", g.Edges())
	}
	if id, ok := g.Lookup("texture"); !ok || id != tg.texture {
		t.Errorf("Lookup(texture) = %d, %v", id, ok)
	}
	if _, ok := g.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
	if g.Name(99) != "" {
		t.Error("Name of an unknown node should be empty")
	}
	if got := g.Names(g.Dependees(tg.texture)); len(got) != 2 || got[0] != "textureview" || got[1] != "fake" {
		t.Errorf("Dependees(texture) = %v", got)
	}
	if got := g.Names(g.Dependencies(tg.data)); len(got) != 1 || got[0] != "path" {
		t.Errorf("Dependencies(data) = %v", got)
	}
	if g.Tracking(tg.view) != TrackReadyFlag {
		t.Errorf("Tracking(textureview) = %v", g.Tracking(tg.view))
	}
}

func TestTrackingString(t *testing.T) {
	tests := map[Tracking]string{
		TrackNone:      "none",
		TrackReadyFlag: "flag",
		TrackExists:    "exists",
	}
	for tr, want := range tests {
		if got := tr.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", tr, got, want)
		}
	}
}

// shader is a typed resource tracked by a ready flag in its owner.
type shader struct{ compiles int }

type renderer struct {
	shaderReady bool
	program     *shader
}

func (s *shader) Create(r *renderer) error {
	s.compiles++
	r.program = s
	return nil
}

func (s *shader) Destroy(r *renderer) error {
	r.program = nil
	return nil
}

func (s *shader) ReadyFlag(r *renderer) *bool { return &r.shaderReady }

// window reports its own existence.
type window struct{}

func (window) Create(*renderer) error      { return nil }
func (window) Destroy(*renderer) error     { return nil }
func (window) Exists(r *renderer) bool     { return r.program != nil }
func (window) ReadyFlag(r *renderer) *bool { return &r.shaderReady }

func TestResourceInterfaces(t *testing.T) {
	s := &shader{}
	b := NewBuilder[*renderer]()
	id := b.Resource("shader", s)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Tracking(id) != TrackReadyFlag {
		t.Fatalf("Tracking = %v, want flag", g.Tracking(id))
	}

	r := &renderer{}
	for range 2 {
		if err := g.EnsureExists(r, id); err != nil {
			t.Fatalf("EnsureExists: %v", err)
		}
	}
	if s.compiles != 1 || !r.shaderReady || r.program != s {
		t.Errorf("compiles = %d, ready = %v", s.compiles, r.shaderReady)
	}

	if err := g.Rebuild(r, id); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if s.compiles != 2 || !r.shaderReady {
		t.Errorf("after rebuild compiles = %d, ready = %v", s.compiles, r.shaderReady)
	}
}

func TestResourceWithBothTrackingStyles(t *testing.T) {
	b := NewBuilder[*renderer]()
	b.Resource("window", window{})
	if _, err := b.Build(); !errors.Is(err, ErrConflictingTracking) {
		t.Errorf("err = %v, want ErrConflictingTracking", err)
	}
}

func TestNilReadyFlagIsUnknown(t *testing.T) {
	b := NewBuilder[NoOwner]()
	creates := 0
	id := b.Node("detached",
		OnCreate(func(NoOwner) error {
			creates++
			return nil
		}),
		WithReadyFlag(func(NoOwner) *bool { return nil }),
	)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for range 2 {
		if err := g.EnsureExists(NoOwner{}, id); err != nil {
			t.Fatalf("EnsureExists: %v", err)
		}
	}
	if creates != 2 {
		t.Errorf("creates = %d, want 2", creates)
	}
	if g.Exists(NoOwner{}, id) {
		t.Error("Exists should be false without a flag")
	}
}
