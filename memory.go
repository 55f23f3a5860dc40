// Playroom Memory Match
//
// A preschool-friendly memory matching game: a shuffled deck of paired
// symbols, tap two cards to find a pair. The round logic lives in
// games/memory; this file is the websocket driver around it.
//
// Features:
// - WebSockets per game ID: /memory/:gameid/ws (and /animals for the
//   fixed-theme giant-card variant)
// - Card themes (animals, shapes & colors, smiles) and 3-8 pairs per round
// - Move counter, win detection, timed mismatch hide
// - "Peek" assist that briefly shows every card without touching round state
// - Client polls tick while a hide or peek is pending; the server keeps no
//   timers of its own
// - Sessions auto-reaped after a configurable idle timeout
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/sprout-games/playroom/games/memory"
)

const (
	defaultPairs = 6
	minPairs     = 3
	maxPairs     = 8
)

// cardThemes are the symbol pools a round can be dealt from.
var cardThemes = map[string][]string{
	"animals": {"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🦁", "🐷", "🐸", "🐵", "🐮", "🐯", "🦒"},
	"shapes":  {"🔴", "🟠", "🟡", "🟢", "🔵", "🟣", "🟤", "⚫️", "⚪️", "🟥", "🟧", "🟨", "🟩", "🟦", "🟪", "⬛️"},
	"smiles":  {"😀", "😃", "😄", "😁", "😆", "😊", "🙂", "😉", "😎", "🤩", "🥳", "🤗", "🤠", "😺", "😸", "😹"},
}

var themeOrder = []string{"animals", "shapes", "smiles"}

// Messages coming from clients
type memoryClientMessage struct {
	Type     string `json:"type"`            // "new_round", "flip", "tick", "peek"
	Pairs    int    `json:"pairs,omitempty"` // new_round
	Theme    string `json:"theme,omitempty"` // new_round
	Position int    `json:"position"`        // flip
}

// cardView is one card as the client may render it.
type cardView struct {
	Face    string `json:"face,omitempty"` // empty while face-down
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// boardMessage is the full redrawable state, sent after every interaction.
type boardMessage struct {
	Type     string     `json:"type"` // "board"
	Theme    string     `json:"theme"`
	Themes   []string   `json:"themes,omitempty"` // empty for fixed-theme variants
	Pairs    int        `json:"pairs"`
	Cards    []cardView `json:"cards"`
	Moves    int        `json:"moves"`
	Finished bool       `json:"finished"`
	HideInMs int64      `json:"hide_in_ms,omitempty"` // poll tick while > 0
	PeekInMs int64      `json:"peek_in_ms,omitempty"`
}

// gameErrorMessage is sent to a single client when a request can't be served.
type gameErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type memoryAction struct {
	client *Client
	msg    memoryClientMessage
}

type memoryHub struct {
	id      string
	cfg     *Config
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan memoryAction

	mu sync.RWMutex

	lastActive time.Time
	round      *memory.Round
	theme      string
	fixedTheme bool // theme locked by the game variant, not selectable
	peekUntil  time.Time
}

func newMemoryHub(cfg *Config, gameID, theme string) *memoryHub {
	fixed := theme != ""
	if theme == "" {
		theme = themeOrder[0]
	}

	// Built-in pools hold 16 symbols, so the opening deal cannot fail.
	round, err := memory.NewRound(cardThemes[theme], defaultPairs)
	if err != nil {
		logf(cfg, "GAMES: Failed to deal opening round for %s: %v", gameID, err)
	}

	return &memoryHub{
		id:         gameID,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan memoryAction),
		lastActive: time.Now(),
		round:      round,
		theme:      theme,
		fixedTheme: fixed,
	}
}

func (h *memoryHub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true

			board := h.boardLocked(time.Now())
			h.mu.Unlock()

			c.send <- board

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case a := <-h.actions:
			h.handleAction(a)
		}
	}
}

func (h *memoryHub) handleAction(a memoryAction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()
	now := h.lastActive

	switch a.msg.Type {
	case "new_round":
		theme := h.theme
		if !h.fixedTheme {
			if _, ok := cardThemes[a.msg.Theme]; ok {
				theme = a.msg.Theme
			}
		}

		pairs := a.msg.Pairs
		if pairs == 0 && h.round != nil {
			pairs = h.round.Pairs()
		}
		pairs = min(max(pairs, minPairs), maxPairs)

		round, err := memory.NewRound(cardThemes[theme], pairs)
		if err != nil {
			select {
			case a.client.send <- gameErrorMessage{
				Type:    "error",
				Message: "Not enough symbols for that many pairs. Try fewer pairs.",
			}:
			default:
			}
			return
		}

		h.round = round
		h.theme = theme
		h.peekUntil = time.Time{}
		logf(h.cfg, "GAMES: New %s round with %d pairs in %s", theme, pairs, h.id)

	case "flip":
		if h.round == nil {
			return
		}
		// Peeking is display-only, but taking taps mid-peek feels wrong
		// to small players, so flips wait the peek out too.
		if now.Before(h.peekUntil) {
			return
		}
		wasFinished := h.round.Status() == memory.Finished
		h.round.Flip(a.msg.Position, now)
		if !wasFinished && h.round.Status() == memory.Finished {
			logf(h.cfg, "GAMES: Round solved in %d moves in %s", h.round.Moves(), h.id)
		}

	case "tick":
		if h.round != nil {
			h.round.Tick(now)
		}

	case "peek":
		if h.round != nil && h.round.Status() != memory.Finished {
			h.peekUntil = now.Add(h.cfg.peekDuration)
		}
	}

	h.broadcastBoardLocked(now)
}

// boardLocked builds the full client view. Assumes h.mu is held.
func (h *memoryHub) boardLocked(now time.Time) boardMessage {
	msg := boardMessage{
		Type:  "board",
		Theme: h.theme,
	}
	if !h.fixedTheme {
		msg.Themes = themeOrder
	}
	if h.round == nil {
		return msg
	}

	peeking := now.Before(h.peekUntil)
	if peeking {
		msg.PeekInMs = h.peekUntil.Sub(now).Milliseconds()
	}
	if deadline, pending := h.round.HideDeadline(); pending && deadline.After(now) {
		msg.HideInMs = deadline.Sub(now).Milliseconds()
	}

	msg.Pairs = h.round.Pairs()
	msg.Moves = h.round.Moves()
	msg.Finished = h.round.Status() == memory.Finished

	msg.Cards = make([]cardView, h.round.Size())
	for i := range msg.Cards {
		face, up := h.round.Face(i)
		view := cardView{
			FaceUp:  up || peeking,
			Matched: h.round.Matched(i),
		}
		if view.FaceUp {
			view.Face = face
		}
		msg.Cards[i] = view
	}

	return msg
}

func (h *memoryHub) broadcastBoardLocked(now time.Time) {
	msg := h.boardLocked(now)

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *memoryHub) lastActiveAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *memoryHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *memoryHub) readPump(c *Client) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg memoryClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "new_round", "flip", "tick", "peek":
			h.actions <- memoryAction{
				client: c,
				msg:    msg,
			}
		default:
			// ignore unknown types
		}
	}
}

// serveMemoryWS picks the hub based on :gameid and runs the client pumps.
func serveMemoryWS(gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.getHub(gameID).(*memoryHub)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(hub.cfg, "GAMES: Websocket upgrade failed for %s: %v", gameID, err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		hub.register <- client

		go client.writePump()
		hub.readPump(client)
	}
}

// registerMemoryGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
//
// An empty theme leaves the theme selectable per round; a fixed theme pins
// it (the animal-match variant).
func registerMemoryGame(cfg *Config, path, theme, page string, mux *httprouter.Router) {
	gm := newGameManager(cfg.sessionTimeout, func(gameID string) gameHub {
		hub := newMemoryHub(cfg, gameID, theme)
		go hub.run()
		return hub
	})

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))
	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, page))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveMemoryWS(gm))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
