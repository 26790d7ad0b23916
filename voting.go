package main

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// openVoting freezes the voting cache (participant roster and drawing log as
// they stand) and opens the accusation phase.
func (h *Hub) openVoting() {
	g := h.game

	roster := make([]RosterPlayer, 0, len(g.order))
	for _, id := range g.order {
		p := h.players[id]
		if p == nil {
			continue
		}
		roster = append(roster, RosterPlayer{
			Name:      p.Name,
			Color:     colorHex(p.Color),
			Connected: !p.Disconnected,
		})
	}
	g.cache = &votingCache{
		roster:  roster,
		strokes: cloneStrokes(g.strokes),
	}

	h.phase = phaseVoting
	h.broadcast(VotingOpenMessage{
		Type:    "voting_open",
		Players: roster,
	})

	log.Info().Int("participants", len(roster)).Msg("voting opened")
}

// handleAccuse records one ballot per connection. A blank accusation is a
// valid abstention. Repeat submissions overwrite.
func (h *Hub) handleAccuse(p *Player, msg ClientMessage) {
	g := h.game
	if g == nil || h.phase != phaseVoting {
		return
	}
	g.votes[p.ConnID] = msg.Accused
	h.maybeResolve()
}

// maybeResolve fires the resolution exactly once, as soon as the collected
// ballots cover every live registered connection. Late joiners raise the
// requirement; disconnects lower it, so this is also called on disconnect.
func (h *Hub) maybeResolve() {
	g := h.game
	if g == nil || h.phase != phaseVoting || g.resolved {
		return
	}
	live := len(h.liveIDs())
	if live == 0 || len(g.votes) < live {
		return
	}
	g.resolved = true
	h.resolveVotes()
}

// tallyVotes counts non-blank ballots per accused name, trimmed and
// case-folded. Display names come from the registry when the accused is a
// known player.
func (h *Hub) tallyVotes(votes map[string]string) (counts map[string]int, total, max int, top []string) {
	folded := make(map[string]int)
	display := make(map[string]string)

	for _, raw := range votes {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := foldName(name)
		folded[key]++
		if _, ok := display[key]; !ok {
			if id, known := h.names[key]; known {
				display[key] = h.players[id].Name
			} else {
				display[key] = name
			}
		}
	}

	counts = make(map[string]int, len(folded))
	for key, n := range folded {
		counts[display[key]] = n
		total += n
		if n > max {
			max = n
		}
	}
	for key, n := range folded {
		if n == max {
			top = append(top, display[key])
		}
	}
	return counts, total, max, top
}

// resolveVotes determines whether the fake artist was caught and broadcasts
// the reveal. The scoring consequences run after a short delay so clients
// can render the reveal first.
func (h *Hub) resolveVotes() {
	g := h.game
	counts, total, max, top := h.tallyVotes(g.votes)

	fake := h.players[g.fakeArtist]
	if fake == nil || fake.Disconnected {
		// No one left to catch or to guess; skip scoring but keep the
		// lobby reachable.
		log.Info().Msg("fake artist disconnected before resolution")
		h.broadcast(VotingResultMessage{
			Type:           "voting_result",
			Caught:         false,
			Counts:         counts,
			Ballots:        total,
			FakeArtistGone: true,
		})
		outcome := OutcomeMessage{
			Type:           "round_outcome",
			Caught:         false,
			FakeArtistGone: true,
			Word:           g.word,
			Scores:         h.Scores(),
		}
		if fake != nil {
			outcome.FakeArtist = fake.Name
		}
		h.finishRound(outcome)
		return
	}

	accused := ""
	caught := false
	tie := len(top) > 1
	if len(top) == 1 {
		accused = top[0]
		caught = 2*max > total && strings.EqualFold(accused, fake.Name)
	}

	h.broadcast(VotingResultMessage{
		Type:    "voting_result",
		Caught:  caught,
		Accused: accused,
		Tie:     tie,
		Counts:  counts,
		Ballots: total,
	})

	log.Info().Str("accused", accused).Bool("caught", caught).Bool("tie", tie).Int("ballots", total).Msg("votes resolved")

	captured := g
	h.schedule(h.cfg.revealDelay, func() {
		if h.game != captured || h.phase != phaseVoting {
			return
		}
		if caught {
			h.openGuess()
		} else {
			h.awardNotCaught()
		}
	})
}

// awardNotCaught gives the escaped fake artist two points.
func (h *Hub) awardNotCaught() {
	g := h.game
	fake := h.players[g.fakeArtist]
	if fake == nil {
		return
	}
	h.applyAward(
		map[string]int{fake.Name: 2},
		[]string{fake.Name},
		OutcomeMessage{
			Type:       "round_outcome",
			Caught:     false,
			FakeArtist: fake.Name,
			Word:       g.word,
		},
	)
}

// openGuess gives a caught fake artist one chance to steal the round by
// naming the secret word.
func (h *Hub) openGuess() {
	g := h.game
	h.phase = phaseGuess
	h.sendToID(g.fakeArtist, GuessPromptMessage{
		Type:     "guess_prompt",
		Category: g.category,
	})

	log.Info().Msg("awaiting fake artist guess")
}

// handleGuessWord resolves a caught fake artist's word guess. Correct
// (trimmed, case-insensitive) steals two points; wrong, and everyone else
// from the voting snapshot earns one.
func (h *Hub) handleGuessWord(p *Player, msg ClientMessage) {
	g := h.game
	if g == nil || h.phase != phaseGuess || p.ConnID != g.fakeArtist {
		return
	}

	guess := strings.TrimSpace(msg.Text)
	correct := strings.EqualFold(guess, g.word)

	outcome := OutcomeMessage{
		Type:         "round_outcome",
		Caught:       true,
		FakeArtist:   p.Name,
		Word:         g.word,
		Guess:        guess,
		GuessCorrect: correct,
	}

	log.Info().Str("guess", guess).Bool("correct", correct).Msg("fake artist guessed")

	if correct {
		h.applyAward(map[string]int{p.Name: 2}, []string{p.Name}, outcome)
		return
	}

	awards := make(map[string]int)
	var winners []string
	for _, name := range h.awardRosterNames() {
		if strings.EqualFold(name, p.Name) {
			continue
		}
		awards[name] = 1
		winners = append(winners, name)
	}
	h.applyAward(awards, winners, outcome)
}

// awardRosterNames returns the names eligible for a caught-and-wrong award:
// the frozen voting snapshot, or the live roster if no snapshot exists.
func (h *Hub) awardRosterNames() []string {
	if g := h.game; g != nil && g.cache != nil {
		names := make([]string, 0, len(g.cache.roster))
		for _, rp := range g.cache.roster {
			names = append(names, rp.Name)
		}
		return names
	}
	return h.liveNames()
}

// finishRound broadcasts the outcome and opens the next-round barrier. The
// barrier requires the round's participants minus anyone already gone; if
// nobody is left to ack, the session falls back to the lobby on its own.
func (h *Hub) finishRound(outcome OutcomeMessage) {
	g := h.game
	h.phase = phaseResults

	required := make([]string, 0, len(g.order))
	for _, name := range h.awardRosterNames() {
		if id, ok := h.names[foldName(name)]; ok {
			if p := h.players[id]; p != nil && p.Disconnected {
				continue
			}
		}
		required = append(required, name)
	}
	g.nextGate = newReadyGate(required)

	h.broadcast(outcome)
	h.broadcastReadiness("next_round", g.nextGate)

	if g.nextGate.size() == 0 {
		captured := g
		h.schedule(h.cfg.revealDelay, func() {
			if h.game != captured || h.phase != phaseResults {
				return
			}
			h.returnToLobby()
		})
	}
}

// handleNextRoundReady acks the next-round barrier; only names that were in
// the round count toward it.
func (h *Hub) handleNextRoundReady(p *Player) {
	g := h.game
	if g == nil || h.phase != phaseResults || g.nextGate == nil {
		return
	}
	if !g.nextGate.ack(p.Name) {
		return
	}
	h.broadcastReadiness("next_round", g.nextGate)
	if g.nextGate.complete() {
		h.tripNextRound()
	}
}

// tripNextRound starts the next game if enough players remain, otherwise
// falls back to the lobby so nobody is stranded on the results screen.
func (h *Hub) tripNextRound() {
	if len(h.liveIDs()) >= minPlayers {
		h.startGame()
		return
	}
	h.returnToLobby()
}
