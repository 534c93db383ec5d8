package depsgraph

import (
	"errors"
	"slices"
	"testing"
)

// recorder is a test owner: it keeps ready flags by name and logs every
// lifecycle call as "create:name" or "destroy:name".
type recorder struct {
	flags   map[string]*bool
	present map[string]bool
	calls   []string
	failOn  map[string]error
}

func newRecorder() *recorder {
	return &recorder{
		flags:   make(map[string]*bool),
		present: make(map[string]bool),
		failOn:  make(map[string]error),
	}
}

func (r *recorder) flag(name string) *bool {
	p, ok := r.flags[name]
	if !ok {
		p = new(bool)
		r.flags[name] = p
	}
	return p
}

func (r *recorder) call(op, name string) error {
	key := op + ":" + name
	if err := r.failOn[key]; err != nil {
		return err
	}
	r.calls = append(r.calls, key)
	return nil
}

func (r *recorder) reset() { r.calls = nil }

func (r *recorder) count(key string) int {
	n := 0
	for _, c := range r.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (r *recorder) index(key string) int { return slices.Index(r.calls, key) }

// flagged declares a node tracked by a ready flag in the recorder.
func flagged(b *Builder[*recorder], name string) NodeID {
	return b.Node(name,
		OnCreate(func(r *recorder) error { return r.call("create", name) }),
		OnDestroy(func(r *recorder) error { return r.call("destroy", name) }),
		WithReadyFlag(func(r *recorder) *bool { return r.flag(name) }),
	)
}

// predicated declares a node tracked by an exists predicate in the recorder.
func predicated(b *Builder[*recorder], name string) NodeID {
	return b.Node(name,
		OnCreate(func(r *recorder) error {
			if err := r.call("create", name); err != nil {
				return err
			}
			r.present[name] = true
			return nil
		}),
		OnDestroy(func(r *recorder) error {
			if err := r.call("destroy", name); err != nil {
				return err
			}
			delete(r.present, name)
			return nil
		}),
		WithExists(func(r *recorder) bool { return r.present[name] }),
	)
}

// untracked declares a node without any tracking.
func untracked(b *Builder[*recorder], name string) NodeID {
	return b.Node(name,
		OnCreate(func(r *recorder) error { return r.call("create", name) }),
		OnDestroy(func(r *recorder) error { return r.call("destroy", name) }),
	)
}

var errNeverCreate = errors.New("this resource should never get created")

// textureGraph builds path <- data <- texture <- textureview, plus fake
// depending on texture. fake fails if it is ever created.
type textureGraph struct {
	g *Graph[*recorder]

	path, data, texture, view, fake NodeID
}

func buildTextureGraph(t *testing.T) textureGraph {
	t.Helper()
	b := NewBuilder[*recorder]()
	tg := textureGraph{
		path:    flagged(b, "path"),
		data:    flagged(b, "data"),
		texture: flagged(b, "texture"),
		view:    flagged(b, "textureview"),
	}
	tg.fake = b.Node("fake",
		OnCreate(func(*recorder) error { return errNeverCreate }),
		WithReadyFlag(func(r *recorder) *bool { return r.flag("fake") }),
	)
	b.DependsOn(tg.data, tg.path).
		DependsOn(tg.texture, tg.data).
		DependsOn(tg.view, tg.texture).
		DependsOn(tg.fake, tg.texture)

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tg.g = g
	return tg
}

func assertCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}
