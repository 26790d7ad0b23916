// Fakeartist Drawing Game
//
// Everyone is told a secret word and takes turns adding one stroke to a
// shared drawing, except one player: the fake artist, who only knows the
// category and has to blend in. After the drawing rounds everyone accuses a
// suspect. A caught fake artist gets one chance to steal the round by
// naming the word.
//
// Features:
// - One shared session per server: /path, /path/ws and /path/qr
// - Players identified by durable name; reconnecting under the same name
//   resumes the seat, the color and the score
// - Single event loop per hub; timers re-enter it and re-validate state
// - Unanimous readiness barriers for lobby start, drawing start and the
//   next round, keyed by name so reconnects cannot desync them
// - First player to reach the victory threshold becomes champion; titles
//   and a victory archive persist for the life of the process
// - Optional PostgreSQL score store so standings survive restarts
// - In-browser QR button to share the session, backed by go-qrcode

package main

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const sendBuffer = 32

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

type event struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	cfg   *Config
	words *WordSet
	store *ScoreStore

	clients map[*Client]bool
	byID    map[string]*Client

	players     map[string]*Player
	names       map[string]string
	order       []string
	colorCursor int

	phase string
	game  *session

	scores  map[string]int
	titles  map[string]int
	history []HistoryEntry

	victoryInFlight bool

	register chan *Client
	unreg    chan *Client
	events   chan event
	deferred chan func()

	// schedule queues fn back onto the run loop after d. Replaced in tests
	// to run the timeline synchronously.
	schedule func(d time.Duration, fn func())

	// mu guards scores, titles and history for readers outside the run
	// loop; the run loop is the only writer.
	mu sync.RWMutex
}

func newHub(cfg *Config, words *WordSet, store *ScoreStore) *Hub {
	h := &Hub{
		cfg:      cfg,
		words:    words,
		store:    store,
		clients:  make(map[*Client]bool),
		byID:     make(map[string]*Client),
		players:  make(map[string]*Player),
		names:    make(map[string]string),
		phase:    phaseLobby,
		scores:   make(map[string]int),
		titles:   make(map[string]int),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan event),
		deferred: make(chan func(), 16),
	}
	h.schedule = func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() {
			h.deferred <- fn
		})
	}
	return h
}

// run is the single timeline every piece of game state is mutated on.
// Scheduled transitions come back in through deferred.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unreg:
			h.handleUnregister(c)
		case ev := <-h.events:
			h.handleEvent(ev)
		case fn := <-h.deferred:
			fn()
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c] = true
	h.byID[c.id] = c
	h.sendTo(c, h.welcome())

	log.Debug().Str("conn", c.id).Msg("client connected")
}

// handleUnregister drops the transport and, if the connection carried a
// player, marks it disconnected. The registry entry survives for
// reconnection; whichever barrier is active sheds the name, which can
// complete it.
func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	if h.byID[c.id] != c {
		return
	}
	delete(h.byID, c.id)

	p := h.players[c.id]
	if p == nil || p.Disconnected {
		return
	}
	p.Disconnected = true

	log.Debug().Str("name", p.Name).Msg("player disconnected")

	h.broadcastRoster()

	switch h.phase {
	case phaseLobby:
		h.checkLobbyStart()
	case phaseRoles:
		g := h.game
		g.drawGate.drop(p.Name)
		h.broadcastReadiness("drawing", g.drawGate)
		if g.drawGate.size() == 0 {
			h.returnToLobby()
			return
		}
		if g.drawGate.complete() {
			h.beginDrawing()
		}
	case phaseVoting:
		h.maybeResolve()
	case phaseResults:
		g := h.game
		if g.nextGate == nil {
			return
		}
		g.nextGate.drop(p.Name)
		h.broadcastReadiness("next_round", g.nextGate)
		if g.nextGate.size() == 0 {
			h.returnToLobby()
			return
		}
		if g.nextGate.complete() {
			h.tripNextRound()
		}
	}
}

func (h *Hub) handleEvent(ev event) {
	c := ev.client
	if _, ok := h.clients[c]; !ok {
		return
	}
	msg := ev.msg

	if msg.Type == "join" {
		h.handleJoin(c, msg)
		return
	}

	p := h.players[c.id]
	if p == nil || p.Disconnected {
		return
	}

	switch msg.Type {
	case "lobby_ready":
		h.handleLobbyReady(p)
	case "start_game":
		h.handleStartGame(p)
	case "role_seen":
		h.handleRoleSeen(p)
	case "ready_for_drawing":
		h.handleReadyForDrawing(p)
	case "stroke_start", "stroke_move", "stroke_end":
		h.handleStroke(p, msg)
	case "accuse":
		h.handleAccuse(p, msg)
	case "guess":
		h.handleGuessWord(p, msg)
	case "next_round_ready":
		h.handleNextRoundReady(p)
	case "champions":
		h.handleChampionsRequest(c)
	case "reset_scores":
		h.handleResetScores(p, msg)
	}
}

// handleJoin registers (or re-keys) the player behind a connection. A blank
// name is dropped without a broadcast.
func (h *Hub) handleJoin(c *Client, msg ClientMessage) {
	p := h.registerPlayer(c.id, msg.Name)
	if p == nil {
		return
	}

	h.broadcastRoster()

	if g := h.game; g != nil && h.inGame(p.ConnID) {
		// Re-deliver the role so a rejoining player can resume.
		h.sendRole(p)
	}

	if h.phase == phaseLobby {
		h.checkLobbyStart()
	}
}

func (h *Hub) inGame(connID string) bool {
	g := h.game
	if g == nil {
		return false
	}
	for _, id := range g.order {
		if id == connID {
			return true
		}
	}
	return false
}

func (h *Hub) welcome() WelcomeMessage {
	msg := WelcomeMessage{
		Type:    "welcome",
		Phase:   h.phase,
		Players: h.rosterPlayers(),
	}
	if g := h.game; g != nil {
		msg.Strokes = cloneStrokes(g.strokes)
		msg.Round = g.round
		msg.TotalRounds = g.totalRounds
		msg.CurrentTurn = h.currentTurnName()
	}
	return msg
}

// sendTo delivers to a single client, evicting it if its buffer is full.
func (h *Hub) sendTo(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) sendToID(connID string, msg any) {
	if c := h.byID[connID]; c != nil {
		h.sendTo(c, msg)
	}
}

func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("from", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, sendBuffer),
			id:   uuid.NewString(),
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join", "lobby_ready", "start_game", "role_seen", "ready_for_drawing",
			"stroke_start", "stroke_move", "stroke_end",
			"accuse", "guess", "next_round_ready", "champions", "reset_scores":
			h.events <- event{client: c, msg: msg}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler encodes the requesting host's game URL as a PNG so players can
// join from a phone.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

	png, err := qrcode.Encode(url, qrcode.Medium, 320)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(gameHTML))
	}
}

func getCssHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(gameCSS))
	}
}

func getJsHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(gameJS))
	}
}

// registerFakeArtistGame sets up routes so that:
//   - $path       → HTML client
//   - $path/ws    → WebSocket for the shared session
//   - $path/qr    → PNG QR code for the session URL
func registerFakeArtistGame(cfg *Config, path string, hub *Hub, mux *httprouter.Router) {
	mux.GET(cfg.prefix+path, getIndexHandler(cfg))

	// Shared assets
	mux.GET(cfg.prefix+"/assets/fakeartist/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/fakeartist/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+path+"/ws", serveWS(hub))

	mux.GET(cfg.prefix+path+"/qr", qrHandler)
}
