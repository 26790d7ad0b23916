package main

import "time"

// Point is a single canvas coordinate, normalized to [0,1] by the client.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one committed line: an ordered point sequence plus who drew it.
type Stroke struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Messages coming from clients
type ClientMessage struct {
	Type        string `json:"type"`                   // "join", "lobby_ready", "start_game", "role_seen", "ready_for_drawing", "stroke_start", "stroke_move", "stroke_end", "accuse", "guess", "next_round_ready", "champions", "reset_scores"
	Name        string `json:"name,omitempty"`         // join
	Accused     string `json:"accused,omitempty"`      // accuse, may be blank (abstain)
	Point       *Point `json:"point,omitempty"`        // stroke_start / stroke_move / stroke_end
	Text        string `json:"text,omitempty"`         // guess
	ResetTitles bool   `json:"reset_titles,omitempty"` // reset_scores
}

// RosterPlayer is one entry of the public player list.
type RosterPlayer struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Connected bool   `json:"connected"`
	Ready     bool   `json:"ready,omitempty"`
}

// WelcomeMessage is sent to a single client immediately on connect so it can
// render the current state before (re)joining.
type WelcomeMessage struct {
	Type        string         `json:"type"` // "welcome"
	Phase       string         `json:"phase"`
	Players     []RosterPlayer `json:"players"`
	Strokes     []Stroke       `json:"strokes,omitempty"`
	Round       int            `json:"round,omitempty"`
	TotalRounds int            `json:"total_rounds,omitempty"`
	CurrentTurn string         `json:"current_turn,omitempty"`
}

// RosterMessage broadcasts the player list whenever it changes.
type RosterMessage struct {
	Type    string         `json:"type"` // "roster"
	Phase   string         `json:"phase"`
	Players []RosterPlayer `json:"players"`
}

// RoleMessage is sent privately to each player when a game starts. The
// secret word is omitted for the fake artist.
type RoleMessage struct {
	Type        string `json:"type"` // "role"
	FakeArtist  bool   `json:"fake_artist"`
	Category    string `json:"category"`
	Word        string `json:"word,omitempty"`
	Color       string `json:"color"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
}

// TurnMessage announces whose turn it is to draw.
type TurnMessage struct {
	Type        string `json:"type"` // "turn"
	Name        string `json:"name"`
	Color       string `json:"color"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
}

// StrokeMessage echoes a drawing event to every client.
type StrokeMessage struct {
	Type  string `json:"type"`  // "stroke"
	Event string `json:"event"` // "start", "move" or "end"
	Name  string `json:"name"`
	Color string `json:"color"`
	Point Point  `json:"point"`
}

// VotingOpenMessage opens the accusation phase with the frozen roster.
type VotingOpenMessage struct {
	Type    string         `json:"type"` // "voting_open"
	Players []RosterPlayer `json:"players"`
}

// VotingResultMessage reveals the outcome of the accusation vote.
type VotingResultMessage struct {
	Type           string         `json:"type"` // "voting_result"
	Caught         bool           `json:"caught"`
	Accused        string         `json:"accused,omitempty"`
	Tie            bool           `json:"tie,omitempty"`
	Counts         map[string]int `json:"counts,omitempty"`
	Ballots        int            `json:"ballots"`
	FakeArtistGone bool           `json:"fake_artist_gone,omitempty"`
}

// GuessPromptMessage is sent only to a caught fake artist.
type GuessPromptMessage struct {
	Type     string `json:"type"` // "guess_prompt"
	Category string `json:"category"`
}

// OutcomeMessage closes a round: the reveal, the winners, the new scores.
type OutcomeMessage struct {
	Type           string         `json:"type"` // "round_outcome"
	Caught         bool           `json:"caught"`
	FakeArtist     string         `json:"fake_artist"`
	FakeArtistGone bool           `json:"fake_artist_gone,omitempty"`
	Word           string         `json:"word"`
	Guess          string         `json:"guess,omitempty"`
	GuessCorrect   bool           `json:"guess_correct"`
	Winners        []string       `json:"winners,omitempty"`
	Scores         map[string]int `json:"scores"`
}

// VictoryMessage announces one or more champions reaching the threshold.
type VictoryMessage struct {
	Type      string         `json:"type"` // "victory"
	Champions []string       `json:"champions"`
	Scores    map[string]int `json:"scores"`
	Titles    map[string]int `json:"titles"`
}

// LobbyMessage returns everyone to the lobby, keeping the standings visible.
type LobbyMessage struct {
	Type   string         `json:"type"` // "lobby"
	Scores map[string]int `json:"scores,omitempty"`
}

// ReadinessMessage reports progress of a consensus barrier.
type ReadinessMessage struct {
	Type     string   `json:"type"`  // "readiness"
	Stage    string   `json:"stage"` // "lobby", "role", "drawing" or "next_round"
	Ready    []string `json:"ready"`
	Required []string `json:"required"`
}

// HistoryEntry is one archived victory.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Champions []string       `json:"champions"`
	Winners   []string       `json:"winners,omitempty"`
	Scores    map[string]int `json:"scores"`
}

// ChampionsDataMessage is the private reply to a "champions" request.
type ChampionsDataMessage struct {
	Type    string         `json:"type"` // "champions_data"
	Scores  map[string]int `json:"scores"`
	Titles  map[string]int `json:"titles"`
	History []HistoryEntry `json:"history"`
}
