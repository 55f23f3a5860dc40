// Playroom Spelling Game ("star points")
//
// Listen-and-spell quiz for early readers. The browser voice says the
// current word (and an example sentence on request), the child types the
// spelling, and the server judges it. One point per correct word, no
// penalties, always moving on to the next word. Quiz logic lives in
// games/spelling; this file is the websocket driver around it.
//
// Features:
// - WebSockets per game ID: /spelling/:gameid/ws
// - Built-in kindergarten word list, replaceable via --word-list, a pasted
//   list, or an uploaded .txt/.csv read client-side and parsed server-side
// - Example sentence per word for the browser's SpeechSynthesis to read
// - Points bucket state and end-of-list summary with restart
// - Sessions auto-reaped after a configurable idle timeout
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/sprout-games/playroom/games/spelling"
)

// Messages coming from clients
type spellingClientMessage struct {
	Type   string `json:"type"`             // "check", "load_list", "load_text", "restart"
	Guess  string `json:"guess,omitempty"`  // check
	Words  string `json:"words,omitempty"`  // load_list: pasted words
	Text   string `json:"text,omitempty"`   // load_text: uploaded file content
	Format string `json:"format,omitempty"` // load_text: "txt" or "csv"
}

// quizStateMessage is the full redrawable state, sent after every interaction.
type quizStateMessage struct {
	Type     string `json:"type"` // "quiz"
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Points   int    `json:"points"`
	Finished bool   `json:"finished"`
	Word     string `json:"word,omitempty"`     // current word, for the browser voice
	Sentence string `json:"sentence,omitempty"` // example sentence for the browser voice
	Feedback string `json:"feedback,omitempty"` // verdict on the previous answer
	Correct  *bool  `json:"correct,omitempty"`  // set right after a check
}

type spellingAction struct {
	client *Client
	msg    spellingClientMessage
}

type spellingHub struct {
	id      string
	cfg     *Config
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan spellingAction

	mu sync.RWMutex

	lastActive time.Time
	quiz       *spelling.Quiz
}

func newSpellingHub(cfg *Config, gameID string, words []string) *spellingHub {
	quiz, err := spelling.NewQuiz(words)
	if err != nil {
		// loadWordList already rejected empty lists, so this is unreachable
		// outside of programming errors; fall back to the built-ins.
		logf(cfg, "GAMES: Empty word list for %s, using defaults", gameID)
		quiz, _ = spelling.NewQuiz(defaultWords)
	}

	return &spellingHub{
		id:         gameID,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan spellingAction),
		lastActive: time.Now(),
		quiz:       quiz,
	}
}

func (h *spellingHub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true

			state := h.stateLocked()
			h.mu.Unlock()

			c.send <- state

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

func (h *spellingHub) handleAction(a spellingAction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	state := quizStateMessage{}

	switch a.msg.Type {
	case "check":
		if h.quiz.Finished() {
			break
		}
		correct := h.quiz.Check(a.msg.Guess)
		state.Correct = &correct
		if correct {
			state.Feedback = "You got it right!"
		} else {
			state.Feedback = "Not quite right, let's move to the next word."
		}

	case "load_list", "load_text":
		var words []string
		switch {
		case a.msg.Type == "load_list":
			words = spelling.ParseList(a.msg.Words)
		case a.msg.Format == "csv":
			words = spelling.ParseCSV(a.msg.Text)
		default:
			words = spelling.ParseText(a.msg.Text)
		}

		quiz, err := spelling.NewQuiz(words)
		if err != nil {
			select {
			case a.client.send <- gameErrorMessage{
				Type:    "error",
				Message: "No valid words found in that list.",
			}:
			default:
			}
			return
		}

		h.quiz = quiz
		state.Feedback = "Loaded a new word list."
		logf(h.cfg, "GAMES: Loaded %d words in %s", quiz.Len(), h.id)

	case "restart":
		h.quiz.Restart()
	}

	h.broadcastStateLocked(state)
}

// stateLocked fills the quiz view around any feedback already set.
// Assumes h.mu is held.
func (h *spellingHub) stateLocked() quizStateMessage {
	return h.fillStateLocked(quizStateMessage{})
}

func (h *spellingHub) fillStateLocked(state quizStateMessage) quizStateMessage {
	state.Type = "quiz"
	state.Index = h.quiz.Index()
	state.Total = h.quiz.Len()
	state.Points = h.quiz.Points()
	state.Finished = h.quiz.Finished()

	if word, ok := h.quiz.Word(); ok {
		state.Word = word
		state.Sentence = spelling.Sentence(word)
	}

	return state
}

func (h *spellingHub) broadcastStateLocked(state quizStateMessage) {
	msg := h.fillStateLocked(state)

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *spellingHub) lastActiveAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *spellingHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *spellingHub) readPump(c *Client) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg spellingClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "check", "load_list", "load_text", "restart":
			h.actions <- spellingAction{
				client: c,
				msg:    msg,
			}
		default:
			// ignore unknown types
		}
	}
}

func serveSpellingWS(gm *GameManager) httprouter.Handle {
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

		hub := gm.getHub(gameID).(*spellingHub)

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

// registerSpellingGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerSpellingGame(cfg *Config, path string, words []string, mux *httprouter.Router) {
	gm := newGameManager(cfg.sessionTimeout, func(gameID string) gameHub {
		hub := newSpellingHub(cfg, gameID, words)
		go hub.run()
		return hub
	})

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))
	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, "assets/spelling/index.html"))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveSpellingWS(gm))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
