// Package session provides the simulated owner context for manifest graphs.
//
// A graph loaded from a manifest has no real resources behind its nodes.
// Instead every node's create and destroy operations act on a [Session]: ready
// flags for flag-tracked nodes live in the session, exists-tracked nodes
// report whether the session holds them, and every call is appended to the
// session's trace.
//
// # Usage
//
//	sess := session.New()
//	if err := g.EnsureExists(sess, id); err != nil {
//	    return err
//	}
//	for _, ev := range sess.Events() {
//	    fmt.Println(ev)
//	}
//
// A Session is owned by one caller at a time. Like the graph operations that
// mutate it, it has no internal synchronization.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Operations recorded in a trace.
const (
	OpCreate  = "create"
	OpDestroy = "destroy"
)

// Event is one create or destroy call in a session's trace.
type Event struct {
	Seq   int       `json:"seq"`
	RunID string    `json:"run_id"`
	Op    string    `json:"op"`
	Node  string    `json:"node"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// Failed reports whether the recorded call returned an error.
func (e Event) Failed() bool { return e.Error != "" }

// String formats the event as "#3 create texture" with the error appended
// for failed calls.
func (e Event) String() string {
	if e.Failed() {
		return fmt.Sprintf("#%d %s %s: %s", e.Seq, e.Op, e.Node, e.Error)
	}
	return fmt.Sprintf("#%d %s %s", e.Seq, e.Op, e.Node)
}

// Session holds the simulated resource state of one manifest graph.
type Session struct {
	ID        string
	CreatedAt time.Time

	runID   string
	flags   map[string]*bool
	present map[string]bool
	events  []Event
	now     func() time.Time
}

// New creates an empty session with a fresh ID. Every session starts a first
// run; see [Session.StartRun].
func New() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		flags:   make(map[string]*bool),
		present: make(map[string]bool),
		now:     time.Now,
	}
	s.CreatedAt = s.now()
	s.runID = uuid.NewString()
	return s
}

// StartRun tags subsequent events with a new run ID and returns it. Callers
// start a run per top-level operation, so a trace can be split into the
// ensure and rebuild calls that produced it.
func (s *Session) StartRun() string {
	s.runID = uuid.NewString()
	return s.runID
}

// RunID returns the ID of the current run.
func (s *Session) RunID() string { return s.runID }

// Flag returns the ready flag for name, allocating it on first use. The
// returned pointer stays valid for the life of the session.
func (s *Session) Flag(name string) *bool {
	p, ok := s.flags[name]
	if !ok {
		p = new(bool)
		s.flags[name] = p
	}
	return p
}

// Present reports whether an exists-tracked resource is held by the session.
func (s *Session) Present(name string) bool { return s.present[name] }

// SetPresent adds or removes an exists-tracked resource.
func (s *Session) SetPresent(name string, ok bool) {
	if ok {
		s.present[name] = true
		return
	}
	delete(s.present, name)
}

// Ready reports whether name is marked existing by either mechanism.
func (s *Session) Ready(name string) bool {
	if p, ok := s.flags[name]; ok && *p {
		return true
	}
	return s.present[name]
}

// Existing returns the sorted names of all resources currently marked as
// existing, whether by ready flag or by presence.
func (s *Session) Existing() []string {
	var names []string
	for name, p := range s.flags {
		if *p {
			names = append(names, name)
		}
	}
	for name := range s.present {
		if p, ok := s.flags[name]; !ok || !*p {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Record appends a call to the trace and returns the event. A nil err records
// a successful call.
func (s *Session) Record(op, node string, err error) Event {
	ev := Event{
		Seq:   len(s.events) + 1,
		RunID: s.runID,
		Op:    op,
		Node:  node,
		At:    s.now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.events = append(s.events, ev)
	return ev
}

// Events returns a copy of the full trace.
func (s *Session) Events() []Event {
	return slices.Clone(s.events)
}

// Since returns the events recorded after sequence number seq.
func (s *Session) Since(seq int) []Event {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(s.events) {
		return nil
	}
	return slices.Clone(s.events[seq:])
}

// Run returns the events recorded under the given run ID.
func (s *Session) Run(runID string) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.RunID == runID {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (s *Session) Len() int { return len(s.events) }

// Reset forgets all resource state and the trace. Ready flag pointers handed
// out earlier stay valid and are cleared.
func (s *Session) Reset() {
	for _, p := range s.flags {
		*p = false
	}
	clear(s.present)
	s.events = nil
	s.runID = uuid.NewString()
}
