package main

import (
	"sort"
	"strings"
)

// foldName normalizes a player name for identity comparisons.
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// readyGate is a consensus barrier keyed by durable player name. It is used
// for the lobby start, the drawing start and the next-round start, each with
// its own required set. Keying by name instead of connection id means a
// reconnect cannot desync the barrier.
type readyGate struct {
	required map[string]string // folded name -> display name
	ready    map[string]bool   // folded name
}

func newReadyGate(names []string) *readyGate {
	g := &readyGate{
		required: make(map[string]string, len(names)),
		ready:    make(map[string]bool),
	}
	for _, name := range names {
		g.required[foldName(name)] = strings.TrimSpace(name)
	}
	return g
}

// ack marks a name ready. Names outside the required set are ignored.
// Returns true if the ack changed anything.
func (g *readyGate) ack(name string) bool {
	key := foldName(name)
	if _, ok := g.required[key]; !ok {
		return false
	}
	if g.ready[key] {
		return false
	}
	g.ready[key] = true
	return true
}

// drop removes a name from both sets, shrinking the requirement. A drop can
// complete the gate.
func (g *readyGate) drop(name string) {
	key := foldName(name)
	delete(g.required, key)
	delete(g.ready, key)
}

// complete reports whether every required name has acked. An empty gate
// never completes.
func (g *readyGate) complete() bool {
	return len(g.required) > 0 && len(g.ready) == len(g.required)
}

func (g *readyGate) size() int {
	return len(g.required)
}

// progress returns sorted display-name lists for readiness broadcasts.
func (g *readyGate) progress() (ready, required []string) {
	ready = make([]string, 0, len(g.ready))
	required = make([]string, 0, len(g.required))
	for key, name := range g.required {
		required = append(required, name)
		if g.ready[key] {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	sort.Strings(required)
	return ready, required
}
