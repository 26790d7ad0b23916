package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRequiresThreePlayers(t *testing.T) {
	h, _ := newTestHub(t)

	alice := join(h, "Alice")
	bob := join(h, "Bob")

	send(h, alice, ClientMessage{Type: "lobby_ready"})
	send(h, bob, ClientMessage{Type: "lobby_ready"})
	send(h, bob, ClientMessage{Type: "start_game"})

	assert.Equal(t, phaseLobby, h.phase)
	assert.Nil(t, h.game)
}

func TestUnanimousReadinessStartsGame(t *testing.T) {
	h, _ := newTestHub(t)

	startThreePlayerGame(t, h)

	g := h.game
	require.NotNil(t, g)
	assert.Equal(t, 1, g.round)
	assert.Equal(t, 2, g.totalRounds)
	assert.Len(t, g.order, 3)
	assert.NotEmpty(t, g.category)
	assert.NotEmpty(t, g.word)

	fakes := 0
	for _, p := range h.players {
		if p.FakeArtist {
			fakes++
			assert.Equal(t, g.fakeArtist, p.ConnID)
		}
	}
	assert.Equal(t, 1, fakes)

	scores := h.Scores()
	require.Len(t, scores, 3)
	for name, score := range scores {
		assert.Zero(t, score, "fresh ledger entry for %s", name)
	}
}

func TestExplicitStartCountsCaller(t *testing.T) {
	h, _ := newTestHub(t)

	alice := join(h, "Alice")
	bob := join(h, "Bob")
	carol := join(h, "Carol")

	send(h, alice, ClientMessage{Type: "lobby_ready"})
	send(h, bob, ClientMessage{Type: "lobby_ready"})
	send(h, carol, ClientMessage{Type: "start_game"})

	assert.Equal(t, phaseRoles, h.phase)
}

func TestExplicitStartRejectedWithoutConsensus(t *testing.T) {
	h, _ := newTestHub(t)

	join(h, "Alice")
	join(h, "Bob")
	carol := join(h, "Carol")

	send(h, carol, ClientMessage{Type: "start_game"})

	assert.Equal(t, phaseLobby, h.phase)
	assert.Nil(t, h.game)
}

func TestStartIgnoredOutsideLobby(t *testing.T) {
	h, _ := newTestHub(t)

	alice, _, _ := startThreePlayerGame(t, h)
	g := h.game

	send(h, alice, ClientMessage{Type: "start_game"})
	send(h, alice, ClientMessage{Type: "lobby_ready"})

	assert.Equal(t, phaseRoles, h.phase)
	assert.Same(t, g, h.game)
}

func TestRoleDelivery(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	g := h.game

	withWord, withoutWord := 0, 0
	for _, c := range []*Client{alice, bob, carol} {
		roles := messagesOf[RoleMessage](drain(c))
		require.Len(t, roles, 1)

		role := roles[0]
		assert.Equal(t, g.category, role.Category)
		assert.Equal(t, colorHex(h.players[c.id].Color), role.Color)

		if role.FakeArtist {
			assert.Empty(t, role.Word)
			assert.Equal(t, g.fakeArtist, c.id)
			withoutWord++
		} else {
			assert.Equal(t, g.word, role.Word)
			withWord++
		}
	}

	assert.Equal(t, 1, withoutWord)
	assert.Equal(t, 2, withWord)
}

func TestRoleRedeliveredOnRejoin(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	makeFakeArtist(h, bob)
	readyForDrawing(t, h, alice, bob, carol)

	h.handleUnregister(bob)
	rejoined := join(h, "Bob")

	roles := messagesOf[RoleMessage](drain(rejoined))
	require.Len(t, roles, 1)
	assert.True(t, roles[0].FakeArtist)
	assert.Empty(t, roles[0].Word)
}

func TestDrawingWaitsForEveryRole(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, _ := startThreePlayerGame(t, h)

	send(h, alice, ClientMessage{Type: "ready_for_drawing"})
	send(h, bob, ClientMessage{Type: "ready_for_drawing"})

	assert.Equal(t, phaseRoles, h.phase)
}

func TestDisconnectCanReleaseDrawingBarrier(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)

	send(h, alice, ClientMessage{Type: "ready_for_drawing"})
	send(h, bob, ClientMessage{Type: "ready_for_drawing"})
	h.handleUnregister(carol)

	assert.Equal(t, phaseDrawing, h.phase)
}

func TestOutOfTurnStrokesDropped(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	intruder := h.byID[g.order[1]]
	observer := h.byID[g.order[0]]
	drain(observer)

	drawStroke(h, intruder)

	assert.Empty(t, g.strokes)
	assert.Nil(t, g.open)
	assert.Zero(t, g.turn)
	assert.Empty(t, messagesOf[StrokeMessage](drain(observer)))
}

func TestStrokeEchoedAndTurnAdvances(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	holder := h.byID[g.order[0]]
	watcher := h.byID[g.order[2]]
	drain(watcher)

	drawStroke(h, holder)

	require.Len(t, g.strokes, 1)
	assert.Len(t, g.strokes[0].Points, 3)
	assert.Equal(t, h.players[holder.id].Name, g.strokes[0].Name)
	assert.Equal(t, 1, g.turn)

	msgs := drain(watcher)
	echoes := messagesOf[StrokeMessage](msgs)
	require.Len(t, echoes, 3)
	assert.Equal(t, "start", echoes[0].Event)
	assert.Equal(t, "move", echoes[1].Event)
	assert.Equal(t, "end", echoes[2].Event)

	turns := messagesOf[TurnMessage](msgs)
	require.Len(t, turns, 1)
	assert.Equal(t, h.players[g.order[1]].Name, turns[0].Name)
}

func TestMoveWithoutOpenStrokeIgnored(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	holder := h.byID[g.order[0]]
	send(h, holder, ClientMessage{Type: "stroke_move", Point: &Point{X: 0.5, Y: 0.5}})
	send(h, holder, ClientMessage{Type: "stroke_end", Point: &Point{X: 0.5, Y: 0.5}})

	assert.Empty(t, g.strokes)
	assert.Zero(t, g.turn)
}

func TestStrokeWithoutPointIgnored(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	holder := h.byID[g.order[0]]
	send(h, holder, ClientMessage{Type: "stroke_start"})

	assert.Nil(t, g.open)
}

func TestRoundWrapSchedulesNextRound(t *testing.T) {
	h, timers := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	for range 3 {
		drawStroke(h, h.byID[g.order[g.turn]])
	}

	assert.Equal(t, phaseDrawing, h.phase)
	assert.Equal(t, 2, g.round)
	assert.Zero(t, g.turn)
	require.Len(t, *timers, 1)
	assert.Equal(t, h.cfg.roundDelay, (*timers)[0].delay)

	watcher := h.byID[g.order[2]]
	drain(watcher)
	fireTimers(timers)

	turns := messagesOf[TurnMessage](drain(watcher))
	require.Len(t, turns, 1)
	assert.Equal(t, 2, turns[0].Round)
	assert.Equal(t, h.players[g.order[0]].Name, turns[0].Name)
}

func TestStaleRoundTimerDoesNothing(t *testing.T) {
	h, timers := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	g := h.game

	for range 3 {
		drawStroke(h, h.byID[g.order[g.turn]])
	}
	require.Len(t, *timers, 1)

	// The session is torn down before the round timer fires.
	send(h, alice, ClientMessage{Type: "reset_scores"})
	require.Equal(t, phaseLobby, h.phase)

	drain(alice)
	fireTimers(timers)

	assert.Empty(t, messagesOf[TurnMessage](drain(alice)))
	assert.Equal(t, phaseLobby, h.phase)
}

func TestFinalWrapOpensVoting(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	drawToVoting(t, h)

	g := h.game
	require.NotNil(t, g.cache)
	assert.Len(t, g.cache.roster, 3)
	assert.Len(t, g.cache.strokes, 6)
	assert.Len(t, g.strokes, 6)
}

func TestVotingSnapshotIsDeepCopy(t *testing.T) {
	h, _ := newTestHub(t)

	alice, bob, carol := startThreePlayerGame(t, h)
	readyForDrawing(t, h, alice, bob, carol)
	drawToVoting(t, h)

	g := h.game
	g.strokes[0].Points[0] = Point{X: 0.9, Y: 0.9}

	assert.Equal(t, Point{X: 0.1, Y: 0.1}, g.cache.strokes[0].Points[0])
}

func TestReturnToLobbyKeepsScores(t *testing.T) {
	h, _ := newTestHub(t)

	alice, _, _ := startThreePlayerGame(t, h)

	h.mu.Lock()
	h.scores["Alice"] = 4
	h.mu.Unlock()

	drain(alice)
	h.returnToLobby()

	assert.Nil(t, h.game)
	assert.Equal(t, phaseLobby, h.phase)
	assert.Equal(t, 4, h.Scores()["Alice"])

	lobbies := messagesOf[LobbyMessage](drain(alice))
	require.Len(t, lobbies, 1)
	assert.Equal(t, 4, lobbies[0].Scores["Alice"])
}
