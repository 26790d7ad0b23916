package main

// Browser client for the fake artist game, served as string constants. The
// CSP is default-src 'self', which forbids inline script and style tags, so
// the page links the script and stylesheet as separate asset routes.

const gameHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fake Artist</title>
<link rel="stylesheet" href="assets/fakeartist/app.css">
<script src="assets/fakeartist/app.js" defer></script>
</head>
<body>
<main>
  <h1>Fake Artist</h1>
  <p id="status">Connecting&hellip;</p>
  <p id="readiness"></p>

  <form id="joinForm">
    <input id="nameInput" maxlength="24" placeholder="Your name" autocomplete="off" required>
    <button type="submit">Join</button>
  </form>

  <div id="lobbyBox" class="hidden">
    <button id="readyBtn">I'm ready</button>
    <button id="startBtn">Start game</button>
    <img id="qr" alt="QR code to join" width="160" height="160">
  </div>

  <div id="roleBox" class="hidden">
    <p id="roleText"></p>
    <button id="seenBtn">Got it, let's draw</button>
  </div>

  <p id="wordLine"></p>

  <canvas id="board" width="600" height="600"></canvas>

  <form id="voteForm" class="hidden">
    <label for="voteSelect">Who is the fake artist?</label>
    <select id="voteSelect"></select>
    <button type="submit">Accuse</button>
  </form>

  <form id="guessForm" class="hidden">
    <label for="guessInput">You were caught! What was the word?</label>
    <input id="guessInput" autocomplete="off">
    <button type="submit">Guess</button>
  </form>

  <div id="nextBox" class="hidden">
    <button id="nextBtn">Ready for the next round</button>
  </div>

  <aside>
    <h2>Players</h2>
    <ul id="players"></ul>
    <h2>Scores</h2>
    <ul id="scores"></ul>
  </aside>
</main>
</body>
</html>
`

const gameCSS = `html, body {
  margin: 0;
  background: #15181d;
  color: #e8e8e8;
  font-family: system-ui, sans-serif;
}
main {
  max-width: 640px;
  margin: 0 auto;
  padding: 1rem;
}
h1 { font-size: 1.4rem; }
#board {
  width: 100%;
  background: #fdfdf8;
  border: 2px solid #444;
  border-radius: 6px;
  touch-action: none;
}
button, input, select {
  font: inherit;
  padding: 0.4rem 0.7rem;
  margin: 0.2rem 0.3rem 0.2rem 0;
  border-radius: 4px;
  border: 1px solid #555;
  background: #242933;
  color: inherit;
}
button { cursor: pointer; }
#qr { display: block; margin-top: 0.5rem; background: #fff; padding: 4px; }
#wordLine { font-weight: bold; }
aside ul { list-style: none; padding-left: 0; }
.hidden { display: none; }
`

const gameJS = `(() => {
  "use strict";

  const $ = (id) => document.getElementById(id);
  const base = location.pathname.replace(/\/+$/, "");

  const canvas = $("board");
  const ctx = canvas.getContext("2d");

  let ws = null;
  let me = "";
  let phase = "lobby";
  let currentTurn = "";
  let drawing = false;

  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify(msg));
    }
  }

  function show(id, on) {
    $(id).classList.toggle("hidden", !on);
  }

  function status(text) {
    $("status").textContent = text;
  }

  function setPhase(p) {
    phase = p;
    show("lobbyBox", p === "lobby" && me !== "");
    if (p !== "roles") show("roleBox", false);
    show("voteForm", p === "voting" && me !== "");
    if (p !== "guess") show("guessForm", false);
    show("nextBox", p === "results" && me !== "");
    if (p === "lobby") $("wordLine").textContent = "";
  }

  function renderPlayers(players) {
    const list = $("players");
    list.innerHTML = "";
    for (const p of players || []) {
      const li = document.createElement("li");
      li.textContent = p.name + (p.connected ? "" : " (offline)") + (p.ready ? " ✓" : "");
      li.style.color = p.color;
      list.appendChild(li);
    }
  }

  function renderScores(scores) {
    if (!scores) return;
    const list = $("scores");
    list.innerHTML = "";
    for (const name of Object.keys(scores).sort()) {
      const li = document.createElement("li");
      li.textContent = name + ": " + scores[name];
      list.appendChild(li);
    }
  }

  function drawPoint(event, color, pt) {
    const x = pt.x * canvas.width;
    const y = pt.y * canvas.height;
    if (event === "start") {
      ctx.strokeStyle = color;
      ctx.lineWidth = 4;
      ctx.lineCap = "round";
      ctx.beginPath();
      ctx.moveTo(x, y);
    } else {
      ctx.lineTo(x, y);
      ctx.stroke();
    }
  }

  function replay(strokes) {
    ctx.clearRect(0, 0, canvas.width, canvas.height);
    for (const s of strokes || []) {
      (s.points || []).forEach((pt, i) => drawPoint(i === 0 ? "start" : "move", s.color, pt));
    }
  }

  const handlers = {
    welcome(msg) {
      setPhase(msg.phase);
      renderPlayers(msg.players);
      replay(msg.strokes);
      currentTurn = msg.current_turn || "";
      status(me === "" ? "Pick a name to join." : "Welcome back.");
    },
    roster(msg) {
      setPhase(msg.phase);
      renderPlayers(msg.players);
    },
    role(msg) {
      setPhase("roles");
      show("roleBox", true);
      replay([]);
      if (msg.fake_artist) {
        $("roleText").textContent = "You are the FAKE artist. Category: " + msg.category + ". Blend in!";
        $("wordLine").textContent = "Category: " + msg.category + " (word unknown to you)";
      } else {
        $("roleText").textContent = "The word is “" + msg.word + "” (" + msg.category + ").";
        $("wordLine").textContent = msg.category + ": " + msg.word;
      }
    },
    turn(msg) {
      currentTurn = msg.name;
      const who = msg.name === me ? "Your turn to draw!" : msg.name + " is drawing…";
      status("Round " + msg.round + "/" + msg.total_rounds + ": " + who);
    },
    stroke(msg) {
      drawPoint(msg.event, msg.color, msg.point);
    },
    voting_open(msg) {
      setPhase("voting");
      const sel = $("voteSelect");
      sel.innerHTML = "";
      const none = document.createElement("option");
      none.value = "";
      none.textContent = "(abstain)";
      sel.appendChild(none);
      for (const p of msg.players || []) {
        if (p.name === me) continue;
        const opt = document.createElement("option");
        opt.value = p.name;
        opt.textContent = p.name;
        sel.appendChild(opt);
      }
      status("Who was faking it? Cast your vote.");
    },
    voting_result(msg) {
      show("voteForm", false);
      if (msg.fake_artist_gone) {
        status("The fake artist left the game.");
      } else if (msg.caught) {
        status(msg.accused + " was the fake artist!");
      } else if (msg.tie) {
        status("The vote was a tie. The fake artist escapes.");
      } else if (msg.accused) {
        status(msg.accused + " is not the fake artist…");
      } else {
        status("No consensus. The fake artist escapes.");
      }
    },
    guess_prompt() {
      setPhase("guess");
      show("guessForm", true);
    },
    round_outcome(msg) {
      setPhase("results");
      renderScores(msg.scores);
      let text = "The word was “" + msg.word + "”.";
      if (msg.caught && msg.guess_correct) {
        text += " " + msg.fake_artist + " guessed it and steals the round!";
      } else if (msg.caught) {
        text += " " + msg.fake_artist + " guessed “" + msg.guess + "”. Wrong!";
      } else if (!msg.fake_artist_gone) {
        text += " " + msg.fake_artist + " got away with it.";
      }
      status(text);
    },
    victory(msg) {
      renderScores(msg.scores);
      status("🏆 Champion: " + (msg.champions || []).join(", "));
    },
    lobby(msg) {
      setPhase("lobby");
      replay([]);
      renderScores(msg.scores);
      currentTurn = "";
    },
    readiness(msg) {
      $("readiness").textContent = msg.stage.replace("_", " ") + ": " + msg.ready.length + "/" + msg.required.length + " ready";
    },
  };

  function connect() {
    const proto = location.protocol === "https:" ? "wss://" : "ws://";
    ws = new WebSocket(proto + location.host + base + "/ws");
    ws.onopen = () => {
      if (me !== "") send({ type: "join", name: me });
    };
    ws.onmessage = (raw) => {
      const msg = JSON.parse(raw.data);
      const handler = handlers[msg.type];
      if (handler) handler(msg);
    };
    ws.onclose = () => {
      status("Disconnected. Retrying…");
      setTimeout(connect, 2000);
    };
  }

  function norm(e) {
    const rect = canvas.getBoundingClientRect();
    return {
      x: (e.clientX - rect.left) / rect.width,
      y: (e.clientY - rect.top) / rect.height,
    };
  }

  function myTurn() {
    return phase === "drawing" && me !== "" && currentTurn === me;
  }

  canvas.addEventListener("pointerdown", (e) => {
    if (!myTurn()) return;
    drawing = true;
    canvas.setPointerCapture(e.pointerId);
    send({ type: "stroke_start", point: norm(e) });
  });
  canvas.addEventListener("pointermove", (e) => {
    if (!drawing) return;
    send({ type: "stroke_move", point: norm(e) });
  });
  canvas.addEventListener("pointerup", (e) => {
    if (!drawing) return;
    drawing = false;
    send({ type: "stroke_end", point: norm(e) });
  });

  $("joinForm").addEventListener("submit", (e) => {
    e.preventDefault();
    me = $("nameInput").value.trim();
    if (me === "") return;
    send({ type: "join", name: me });
    show("joinForm", false);
    setPhase(phase);
    status("Joined as " + me + ".");
  });

  $("readyBtn").addEventListener("click", () => send({ type: "lobby_ready" }));
  $("startBtn").addEventListener("click", () => send({ type: "start_game" }));
  $("seenBtn").addEventListener("click", () => {
    send({ type: "role_seen" });
    send({ type: "ready_for_drawing" });
    show("roleBox", false);
    setPhase("drawing");
  });
  $("voteForm").addEventListener("submit", (e) => {
    e.preventDefault();
    send({ type: "accuse", accused: $("voteSelect").value });
    show("voteForm", false);
    status("Vote cast. Waiting for the others…");
  });
  $("guessForm").addEventListener("submit", (e) => {
    e.preventDefault();
    send({ type: "guess", text: $("guessInput").value });
    show("guessForm", false);
  });
  $("nextBtn").addEventListener("click", () => send({ type: "next_round_ready" }));

  $("qr").src = base + "/qr";
  connect();
})();
`
