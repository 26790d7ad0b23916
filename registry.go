package main

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Player holds the data we store server-side for one registered name. The
// connection id is volatile; the name is durable and survives reconnects.
type Player struct {
	ConnID       string
	Name         string
	Color        int
	FakeArtist   bool
	SeenRole     bool
	LobbyReady   bool
	Disconnected bool
}

// Fixed rotating color palette; players keep their index for the whole
// session, including across reconnects.
var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#008080",
}

func colorHex(index int) string {
	return palette[index%len(palette)]
}

// registerPlayer creates or re-keys the Player for name under connID. There
// is never more than one live Player per name: if the name is already
// registered under another connection, that entry is atomically moved to the
// new connection instead of duplicated. Returns nil when the name is blank
// or the connection already carries a different name.
func (h *Hub) registerPlayer(connID, name string) *Player {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	folded := foldName(name)

	if p := h.players[connID]; p != nil {
		if foldName(p.Name) == folded {
			return p
		}
		// A connection cannot change its name; reconnect instead.
		return nil
	}

	if oldID, ok := h.names[folded]; ok && oldID != connID {
		return h.remapPlayer(oldID, connID)
	}

	p := &Player{
		ConnID: connID,
		Name:   name,
		Color:  h.nextColor(),
	}
	h.players[connID] = p
	h.names[folded] = connID
	h.order = append(h.order, connID)

	log.Debug().Str("name", p.Name).Str("conn", connID).Msg("player registered")

	return p
}

// remapPlayer moves an existing Player from oldID to newID and rewrites
// every structure that references the old connection id: registry indexes,
// the session turn order, the fake-artist pointer and in-flight votes.
// Readiness gates are keyed by name and need no rewrite.
func (h *Hub) remapPlayer(oldID, newID string) *Player {
	p := h.players[oldID]
	if p == nil {
		return nil
	}

	delete(h.players, oldID)
	p.ConnID = newID
	p.Disconnected = false
	h.players[newID] = p
	h.names[foldName(p.Name)] = newID

	for i, id := range h.order {
		if id == oldID {
			h.order[i] = newID
		}
	}

	if g := h.game; g != nil {
		for i, id := range g.order {
			if id == oldID {
				g.order[i] = newID
			}
		}
		if g.fakeArtist == oldID {
			g.fakeArtist = newID
		}
		if vote, ok := g.votes[oldID]; ok {
			delete(g.votes, oldID)
			g.votes[newID] = vote
		}
	}

	// Kick any zombie client still holding the old connection.
	if old := h.byID[oldID]; old != nil {
		delete(h.byID, oldID)
		if _, ok := h.clients[old]; ok {
			delete(h.clients, old)
			close(old.send)
		}
	}

	log.Debug().Str("name", p.Name).Str("old", oldID).Str("new", newID).Msg("player reconnected")

	return p
}

// nextColor picks the next unused palette index, scanning from a rotating
// cursor so colors cycle rather than cluster.
func (h *Hub) nextColor() int {
	used := make(map[int]bool, len(h.players))
	for _, p := range h.players {
		used[p.Color%len(palette)] = true
	}
	for range palette {
		c := h.colorCursor % len(palette)
		h.colorCursor++
		if !used[c] {
			return c
		}
	}
	c := h.colorCursor % len(palette)
	h.colorCursor++
	return c
}

// liveIDs returns the connection ids of non-disconnected players in
// registration order.
func (h *Hub) liveIDs() []string {
	ids := make([]string, 0, len(h.order))
	for _, id := range h.order {
		if p := h.players[id]; p != nil && !p.Disconnected {
			ids = append(ids, id)
		}
	}
	return ids
}

func (h *Hub) liveNames() []string {
	ids := h.liveIDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, h.players[id].Name)
	}
	return names
}

// rosterPlayers builds the public player list in registration order,
// disconnected players included but flagged.
func (h *Hub) rosterPlayers() []RosterPlayer {
	out := make([]RosterPlayer, 0, len(h.order))
	for _, id := range h.order {
		p := h.players[id]
		if p == nil {
			continue
		}
		out = append(out, RosterPlayer{
			Name:      p.Name,
			Color:     colorHex(p.Color),
			Connected: !p.Disconnected,
			Ready:     p.LobbyReady,
		})
	}
	return out
}
