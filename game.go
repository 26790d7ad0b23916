package main

import (
	"math/rand/v2"

	"github.com/rs/zerolog/log"
)

const (
	phaseLobby   = "lobby"
	phaseRoles   = "roles"
	phaseDrawing = "drawing"
	phaseVoting  = "voting"
	phaseGuess   = "guess"
	phaseResults = "results"
)

// Games need one honest majority and one fake artist.
const minPlayers = 3

// session is the state of one game, from role assignment to resolution. A
// new game gets a new session; the ledger and history live on the Hub and
// survive it.
type session struct {
	round       int
	totalRounds int
	category    string
	word        string

	fakeArtist string   // connection id
	order      []string // connection ids, registration order
	turn       int      // index into order

	strokes []Stroke
	open    *Stroke // stroke in progress, nil between strokes

	votes    map[string]string // connection id -> accused name
	resolved bool
	awarded  bool
	cache    *votingCache

	drawGate *readyGate
	nextGate *readyGate
}

// votingCache is the frozen snapshot taken when voting opens. Awards and the
// next-round barrier are derived from it, not from the live roster, so
// players joining or leaving mid-vote cannot shift who participated.
type votingCache struct {
	roster  []RosterPlayer
	strokes []Stroke
}

func cloneStrokes(strokes []Stroke) []Stroke {
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		out[i] = Stroke{
			Name:   s.Name,
			Color:  s.Color,
			Points: append([]Point(nil), s.Points...),
		}
	}
	return out
}

// lobbyGate derives the lobby-start barrier from the live roster: required
// is every connected registered name, ready is whoever has acked. Derived
// fresh on every check so joins and disconnects reshape it automatically.
func (h *Hub) lobbyGate() *readyGate {
	g := newReadyGate(h.liveNames())
	for _, p := range h.players {
		if !p.Disconnected && p.LobbyReady {
			g.ack(p.Name)
		}
	}
	return g
}

// checkLobbyStart starts the game once every connected player is ready and
// there are enough of them.
func (h *Hub) checkLobbyStart() {
	g := h.lobbyGate()
	h.broadcastReadiness("lobby", g)
	if g.complete() && g.size() >= minPlayers {
		h.startGame()
	}
}

func (h *Hub) handleLobbyReady(p *Player) {
	if h.phase != phaseLobby {
		return
	}
	p.LobbyReady = true
	h.checkLobbyStart()
}

// handleStartGame is the explicit start action: it counts the caller as
// ready and requires everyone else to have acked already. Outside the lobby
// it is an idempotent no-op.
func (h *Hub) handleStartGame(p *Player) {
	if h.phase != phaseLobby {
		return
	}
	p.LobbyReady = true
	g := h.lobbyGate()
	h.broadcastReadiness("lobby", g)
	if !g.complete() || g.size() < minPlayers {
		log.Warn().Str("by", p.Name).Int("players", g.size()).Msg("start rejected")
		return
	}
	h.startGame()
}

// startGame assigns roles and enters the role-reveal phase. The roster is
// the connected players in registration order; disconnected names stay in
// the registry (and the ledger) but sit this one out.
func (h *Hub) startGame() {
	ids := h.liveIDs()
	if len(ids) < minPlayers {
		log.Warn().Int("players", len(ids)).Msg("not enough players to start")
		return
	}

	for _, id := range ids {
		p := h.players[id]
		p.FakeArtist = false
		p.SeenRole = false
		p.LobbyReady = false
		h.ensureScore(p.Name)
	}

	fake := ids[rand.IntN(len(ids))]
	h.players[fake].FakeArtist = true

	category, word := h.words.pick()

	h.game = &session{
		round:       1,
		totalRounds: h.cfg.rounds,
		category:    category,
		word:        word,
		fakeArtist:  fake,
		order:       append([]string(nil), ids...),
		votes:       make(map[string]string),
		drawGate:    newReadyGate(h.namesOf(ids)),
	}
	h.phase = phaseRoles

	log.Info().Int("players", len(ids)).Str("category", category).Msg("game started")

	h.broadcastRoster()
	for _, id := range ids {
		h.sendRole(h.players[id])
	}
	h.broadcastReadiness("drawing", h.game.drawGate)
}

func (h *Hub) namesOf(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p := h.players[id]; p != nil {
			names = append(names, p.Name)
		}
	}
	return names
}

// sendRole privately delivers a player's role. The fake artist learns the
// category but not the word.
func (h *Hub) sendRole(p *Player) {
	g := h.game
	if g == nil {
		return
	}
	msg := RoleMessage{
		Type:        "role",
		FakeArtist:  p.FakeArtist,
		Category:    g.category,
		Color:       colorHex(p.Color),
		Round:       g.round,
		TotalRounds: g.totalRounds,
	}
	if !p.FakeArtist {
		msg.Word = g.word
	}
	h.sendToID(p.ConnID, msg)
}

func (h *Hub) handleRoleSeen(p *Player) {
	if h.phase != phaseRoles {
		return
	}
	p.SeenRole = true

	g := newReadyGate(h.namesOf(h.game.order))
	for _, id := range h.game.order {
		if q := h.players[id]; q != nil && q.SeenRole {
			g.ack(q.Name)
		}
	}
	h.broadcastReadiness("role", g)
}

// handleReadyForDrawing acks the drawing barrier; when the whole roster has
// acked, the first turn begins.
func (h *Hub) handleReadyForDrawing(p *Player) {
	g := h.game
	if g == nil || h.phase != phaseRoles {
		return
	}
	if !g.drawGate.ack(p.Name) {
		return
	}
	h.broadcastReadiness("drawing", g.drawGate)
	if g.drawGate.complete() {
		h.beginDrawing()
	}
}

func (h *Hub) beginDrawing() {
	h.phase = phaseDrawing
	h.game.turn = 0
	h.broadcastTurn()
}

// handleStroke accepts drawing input from the current turn holder only;
// anything else is dropped without comment. A stroke opens on stroke_start,
// grows on stroke_move, and commits on stroke_end, which also ends the turn.
func (h *Hub) handleStroke(p *Player, msg ClientMessage) {
	g := h.game
	if g == nil || h.phase != phaseDrawing {
		return
	}
	if len(g.order) == 0 || g.order[g.turn] != p.ConnID {
		return
	}
	if msg.Point == nil {
		return
	}
	point := *msg.Point

	switch msg.Type {
	case "stroke_start":
		g.open = &Stroke{
			Name:   p.Name,
			Color:  colorHex(p.Color),
			Points: []Point{point},
		}
	case "stroke_move":
		if g.open == nil {
			return
		}
		g.open.Points = append(g.open.Points, point)
	case "stroke_end":
		if g.open == nil {
			return
		}
		g.open.Points = append(g.open.Points, point)
		g.strokes = append(g.strokes, *g.open)
		g.open = nil
	}

	h.broadcast(StrokeMessage{
		Type:  "stroke",
		Event: msg.Type[len("stroke_"):],
		Name:  p.Name,
		Color: colorHex(p.Color),
		Point: point,
	})

	if msg.Type == "stroke_end" {
		h.advanceTurn()
	}
}

// advanceTurn moves the pointer to the next artist. Wrapping to the first
// player ends the round: either another round starts (announced after a
// short pause so the round break is visible) or voting opens.
func (h *Hub) advanceTurn() {
	g := h.game
	g.turn = (g.turn + 1) % len(g.order)
	if g.turn != 0 {
		h.broadcastTurn()
		return
	}

	if g.round < g.totalRounds {
		g.round++
		captured := g
		h.schedule(h.cfg.roundDelay, func() {
			if h.game != captured || h.phase != phaseDrawing {
				return
			}
			h.broadcastTurn()
		})
		return
	}

	h.openVoting()
}

func (h *Hub) currentTurnName() string {
	g := h.game
	if g == nil || h.phase != phaseDrawing || len(g.order) == 0 {
		return ""
	}
	if p := h.players[g.order[g.turn]]; p != nil {
		return p.Name
	}
	return ""
}

func (h *Hub) broadcastTurn() {
	g := h.game
	p := h.players[g.order[g.turn]]
	if p == nil {
		return
	}
	h.broadcast(TurnMessage{
		Type:        "turn",
		Name:        p.Name,
		Color:       colorHex(p.Color),
		Round:       g.round,
		TotalRounds: g.totalRounds,
	})
}

// returnToLobby tears down the session. The registry, the ledger and the
// history all survive; only per-game state is dropped.
func (h *Hub) returnToLobby() {
	h.game = nil
	h.phase = phaseLobby
	for _, p := range h.players {
		p.FakeArtist = false
		p.SeenRole = false
		p.LobbyReady = false
	}
	h.broadcast(LobbyMessage{
		Type:   "lobby",
		Scores: h.Scores(),
	})
	h.broadcastRoster()
}

func (h *Hub) broadcastRoster() {
	h.broadcast(RosterMessage{
		Type:    "roster",
		Phase:   h.phase,
		Players: h.rosterPlayers(),
	})
}

func (h *Hub) broadcastReadiness(stage string, g *readyGate) {
	ready, required := g.progress()
	h.broadcast(ReadinessMessage{
		Type:     "readiness",
		Stage:    stage,
		Ready:    ready,
		Required: required,
	})
}
