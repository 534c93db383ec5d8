package manifest

import (
	"errors"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// Lookup resolves a node name in g.
func Lookup(g *Graph, name string) (depsgraph.NodeID, error) {
	id, ok := g.Lookup(name)
	if !ok {
		return 0, apperr.New(apperr.ErrCodeNodeNotFound, "unknown node: %s", name)
	}
	return id, nil
}

// Ensure runs EnsureExists for the named node as a new session run and
// returns the events that run recorded. On failure the events recorded up to
// and including the failed call are returned along with the error.
func Ensure(g *Graph, s *session.Session, name string) ([]session.Event, error) {
	id, err := Lookup(g, name)
	if err != nil {
		return nil, err
	}
	run := s.StartRun()
	err = g.EnsureExists(s, id)
	return s.Run(run), Classify(err)
}

// Rebuild runs Rebuild for the named node as a new session run and returns
// the events that run recorded.
func Rebuild(g *Graph, s *session.Session, name string) ([]session.Event, error) {
	id, err := Lookup(g, name)
	if err != nil {
		return nil, err
	}
	run := s.StartRun()
	err = g.Rebuild(s, id)
	return s.Run(run), Classify(err)
}

// Classify translates engine errors into coded errors for the CLI and the
// HTTP server. Errors that already carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil || apperr.GetCode(err) != "" {
		return err
	}
	var lerr *depsgraph.LifecycleError
	switch {
	case errors.As(err, &lerr):
		code := apperr.ErrCodeCreateFailed
		if lerr.Op == depsgraph.OpDestroy {
			code = apperr.ErrCodeDestroyFailed
		}
		return apperr.Wrap(code, lerr.Err, "%s %s failed", lerr.Op, lerr.Node)
	case errors.Is(err, depsgraph.ErrUnknownNode):
		return apperr.Wrap(apperr.ErrCodeNodeNotFound, err, "unknown node")
	}
	return apperr.Wrap(apperr.ErrCodeInternal, err, "unexpected error")
}
