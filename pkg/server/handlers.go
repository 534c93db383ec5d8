package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/render/nodelink"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// RunResponse is the body of ensure and rebuild responses.
type RunResponse struct {
	Node   string          `json:"node"`
	RunID  string          `json:"run_id"`
	Events []session.Event `json:"events"`
	Error  *ErrorResponse  `json:"error,omitempty"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

func errorBody(err error) *ErrorResponse {
	body := &ErrorResponse{
		Code:    string(apperr.GetCode(err)),
		Message: apperr.UserMessage(err),
	}
	if body.Code == "" {
		body.Code = string(apperr.ErrCodeInternal)
	}
	if cause := errors.Unwrap(err); cause != nil {
		body.Cause = cause.Error()
	}
	return body
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := s.view()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	svg, _, err := nodelink.RenderCached(r.Context(), s.cache, s.keyer, dot)
	if err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInternal, err, "render failed"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := manifest.Lookup(s.graph, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, graph.DescribeNode(s.graph, id))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := manifest.Lookup(s.graph, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := graph.DescribePlan(s.graph, s.sess, id)
	if err != nil {
		s.writeError(w, manifest.Classify(err))
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleEnsure(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, manifest.Ensure)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, manifest.Rebuild)
}

type runFunc func(*manifest.Graph, *session.Session, string) ([]session.Event, error)

func (s *Server) run(w http.ResponseWriter, r *http.Request, fn runFunc) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	events, err := fn(s.graph, s.sess, name)
	resp := RunResponse{Node: name, RunID: s.sess.RunID(), Events: events}
	s.mu.Unlock()

	if resp.Events == nil {
		resp.Events = []session.Event{}
	}
	status := http.StatusOK
	if err != nil {
		status = apperr.HTTPStatus(err)
		if apperr.Is(err, apperr.ErrCodeNodeNotFound) {
			s.writeError(w, err)
			return
		}
		resp.Error = errorBody(err)
		s.logger.Warn("Run failed", "node", name, "err", err)
	} else {
		s.logger.Debug("Run complete", "node", name, "events", len(events))
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "since must be a non-negative integer"))
			return
		}
		since = n
	}

	s.mu.Lock()
	events := s.sess.Since(since)
	s.mu.Unlock()
	if events == nil {
		events = []session.Event{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.sess.Reset()
	s.mu.Unlock()
	s.logger.Info("Session reset")
	w.WriteHeader(http.StatusNoContent)
}

// view returns the annotated graph with the session state. Callers hold mu.
func (s *Server) view() graph.Graph {
	view := graph.DescribeState(s.graph, s.sess)
	view.Annotate(s.manifest)
	return view
}

// dot builds the DOT source for the current state, highlighting the nodes a
// rebuild of ?highlight would recreate.
func (s *Server) dot(r *http.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := nodelink.Options{Detailed: r.URL.Query().Has("detailed")}
	if name := r.URL.Query().Get("highlight"); name != "" {
		id, err := manifest.Lookup(s.graph, name)
		if err != nil {
			return "", err
		}
		plan, err := graph.DescribePlan(s.graph, s.sess, id)
		if err != nil {
			return "", manifest.Classify(err)
		}
		opts.Highlight = plan.Create
	}
	return nodelink.ToDOT(s.view(), opts), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("Write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, apperr.HTTPStatus(err), errorBody(err))
}
