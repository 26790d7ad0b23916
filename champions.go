package main

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// ensureScore lazily creates a ledger entry. Entries are never removed
// except by an explicit reset, so scores survive disconnects and returns to
// the lobby.
func (h *Hub) ensureScore(name string) {
	h.mu.Lock()
	if _, ok := h.scores[name]; !ok {
		h.scores[name] = 0
	}
	h.mu.Unlock()
}

// Scores returns a copy of the name -> score ledger. Safe to call from
// outside the run loop.
func (h *Hub) Scores() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.scores))
	for name, score := range h.scores {
		out[name] = score
	}
	return out
}

// Titles returns a copy of the name -> champion title count.
func (h *Hub) Titles() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.titles))
	for name, titles := range h.titles {
		out[name] = titles
	}
	return out
}

// History returns a copy of the victory archive, oldest first.
func (h *Hub) History() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]HistoryEntry, len(h.history))
	copy(out, h.history)
	return out
}

// applyAward mutates the ledger for one finished round and immediately runs
// champion detection. The two steps are not separable: a victory preempts
// the round outcome broadcast. The round's awarded flag and the
// victory-in-flight guard together make a second trigger a no-op.
func (h *Hub) applyAward(awards map[string]int, winners []string, outcome OutcomeMessage) {
	g := h.game
	if g == nil || g.awarded || h.victoryInFlight {
		log.Warn().Msg("duplicate award attempt ignored")
		return
	}
	g.awarded = true
	h.victoryInFlight = true
	defer func() {
		h.victoryInFlight = false
	}()

	h.mu.Lock()
	for name, points := range awards {
		h.scores[name] += points
	}
	h.mu.Unlock()

	log.Info().Any("awards", awards).Msg("round scored")

	if champions := h.championNames(); len(champions) > 0 {
		h.crownChampions(champions, winners)
		return
	}

	h.persistScores()

	outcome.Winners = winners
	outcome.Scores = h.Scores()
	h.finishRound(outcome)
}

// championNames returns every name at the ledger-wide maximum, but only once
// at least one score has reached the victory threshold.
func (h *Hub) championNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	reached := false
	max := 0
	for _, score := range h.scores {
		if score >= h.cfg.threshold {
			reached = true
		}
		if score > max {
			max = score
		}
	}
	if !reached {
		return nil
	}

	var champions []string
	for name, score := range h.scores {
		if score == max {
			champions = append(champions, name)
		}
	}
	sort.Strings(champions)
	return champions
}

// crownChampions increments titles, archives the victory, announces it, and
// resets the session back to the lobby. The ledger and history survive.
func (h *Hub) crownChampions(champions, winners []string) {
	h.mu.Lock()
	for _, name := range champions {
		h.titles[name]++
	}
	entry := HistoryEntry{
		Timestamp: time.Now(),
		Champions: append([]string(nil), champions...),
		Winners:   append([]string(nil), winners...),
		Scores:    make(map[string]int, len(h.scores)),
	}
	for name, score := range h.scores {
		entry.Scores[name] = score
	}
	h.history = append(h.history, entry)
	h.mu.Unlock()

	log.Info().Strs("champions", champions).Msg("victory")

	h.broadcast(VictoryMessage{
		Type:      "victory",
		Champions: champions,
		Scores:    h.Scores(),
		Titles:    h.Titles(),
	})

	h.persistVictory(entry)
	h.returnToLobby()
}

// handleChampionsRequest answers a single client with the full standings.
func (h *Hub) handleChampionsRequest(c *Client) {
	h.sendTo(c, ChampionsDataMessage{
		Type:    "champions_data",
		Scores:  h.Scores(),
		Titles:  h.Titles(),
		History: h.History(),
	})
}

// handleResetScores clears the ledger (and optionally the champion titles)
// and restarts from the lobby. The history archive is kept.
func (h *Hub) handleResetScores(p *Player, msg ClientMessage) {
	h.mu.Lock()
	h.scores = make(map[string]int)
	if msg.ResetTitles {
		h.titles = make(map[string]int)
	}
	h.mu.Unlock()

	log.Info().Str("by", p.Name).Bool("titles", msg.ResetTitles).Msg("scores reset")

	h.persistScores()
	h.returnToLobby()
}

// persistScores hands the current standings to the score store, if one is
// configured. Best effort; failures are logged, never fatal.
func (h *Hub) persistScores() {
	if h.store == nil {
		return
	}
	scores, titles := h.Scores(), h.Titles()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.store.SaveScores(ctx, scores, titles); err != nil {
			log.Error().Err(err).Msg("saving scores failed")
		}
	}()
}

// persistVictory archives one victory and the standings it produced.
func (h *Hub) persistVictory(entry HistoryEntry) {
	if h.store == nil {
		return
	}
	scores, titles := h.Scores(), h.Titles()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.store.SaveScores(ctx, scores, titles); err != nil {
			log.Error().Err(err).Msg("saving scores failed")
		}
		if err := h.store.SaveVictory(ctx, entry); err != nil {
			log.Error().Err(err).Msg("saving victory failed")
		}
	}()
}

// restore warms the ledger, titles and history from the score store at
// startup so standings survive a server restart.
func (h *Hub) restore(ctx context.Context) {
	if h.store == nil {
		return
	}

	scores, titles, err := h.store.LoadScores(ctx)
	if err != nil {
		log.Error().Err(err).Msg("restoring scores failed")
		return
	}
	history, err := h.store.LoadHistory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("restoring history failed")
		return
	}

	h.mu.Lock()
	h.scores = scores
	h.titles = titles
	h.history = history
	h.mu.Unlock()

	log.Info().Int("players", len(scores)).Int("victories", len(history)).Msg("standings restored")
}
