/*
Copyright © 2026 Sprout Games <hello@sprout.games>
*/

// Package memory implements the round engine for the memory matching games.
//
// A round is a shuffled deck of paired symbols. Positions move from hidden to
// revealed to either matched (permanently face-up) or back to hidden after a
// mismatch display delay. The engine keeps no timers of its own: the caller
// supplies the clock through Flip and Tick, and re-renders from Face after
// every interaction.
package memory

import (
	"crypto/rand"
	"errors"
	"time"
)

// HideDelay is how long a mismatched pair stays face-up before Tick may
// hide it again.
const HideDelay = 800 * time.Millisecond

// ErrInsufficientSymbols is returned by NewRound when the symbol pool holds
// fewer distinct symbols than the requested number of pairs.
var ErrInsufficientSymbols = errors.New("not enough distinct symbols for the requested number of pairs")

// Status reports whether a round is still being played.
type Status int

const (
	InProgress Status = iota
	Finished
)

// Round holds all state for one play-through. The zero value is not usable;
// create rounds with NewRound. A Round is not safe for concurrent use.
type Round struct {
	deck     []string
	revealed map[int]bool
	matched  map[int]bool
	moves    int
	hideAt   time.Time
	status   Status
}

// NewRound samples pairs distinct symbols from pool, duplicates each, and
// shuffles them into a fresh deck. All other round state starts empty.
func NewRound(pool []string, pairs int) (*Round, error) {
	distinct := dedupe(pool)
	if pairs < 1 || len(distinct) < pairs {
		return nil, ErrInsufficientSymbols
	}

	shuffle(distinct)

	deck := make([]string, 0, pairs*2)
	for _, symbol := range distinct[:pairs] {
		deck = append(deck, symbol, symbol)
	}
	shuffle(deck)

	return &Round{
		deck:     deck,
		revealed: make(map[int]bool),
		matched:  make(map[int]bool),
	}, nil
}

// Flip turns the card at pos face-up and reports whether the flip was
// accepted. Flips are silent no-ops when the round is finished, the position
// is out of range, already matched or already revealed, or while a mismatched
// pair is still on display. When a second card comes up, the move counter
// increments and the pair is resolved: a match is locked in permanently, a
// mismatch stays visible until HideDelay has passed.
func (r *Round) Flip(pos int, now time.Time) bool {
	// Advance an expired hide deadline first, so a click that lands after
	// the delay but before the driver's next Tick still behaves normally.
	r.Tick(now)

	if r.status == Finished || pos < 0 || pos >= len(r.deck) {
		return false
	}
	if !r.hideAt.IsZero() {
		return false
	}
	if r.matched[pos] || r.revealed[pos] {
		return false
	}

	r.revealed[pos] = true
	if len(r.revealed) < 2 {
		return true
	}

	r.moves++

	pair := make([]int, 0, 2)
	for i := range r.revealed {
		pair = append(pair, i)
	}

	if r.deck[pair[0]] == r.deck[pair[1]] {
		r.matched[pair[0]] = true
		r.matched[pair[1]] = true
		r.revealed = make(map[int]bool)
		if len(r.matched) == len(r.deck) {
			r.status = Finished
		}
	} else {
		r.hideAt = now.Add(HideDelay)
	}

	return true
}

// Tick hides a mismatched pair once its display deadline has passed, and
// reports whether anything changed. The surrounding driver calls this on
// every redraw; nothing happens between calls.
func (r *Round) Tick(now time.Time) bool {
	if r.hideAt.IsZero() || now.Before(r.hideAt) {
		return false
	}
	r.revealed = make(map[int]bool)
	r.hideAt = time.Time{}
	return true
}

// Face returns the symbol at pos and whether it is currently face-up
// (revealed or matched). Out-of-range positions read as a hidden empty face.
func (r *Round) Face(pos int) (string, bool) {
	if pos < 0 || pos >= len(r.deck) {
		return "", false
	}
	return r.deck[pos], r.revealed[pos] || r.matched[pos]
}

// Matched reports whether the card at pos has been permanently solved.
func (r *Round) Matched(pos int) bool {
	return r.matched[pos]
}

// Moves returns the number of completed pair comparisons so far.
func (r *Round) Moves() int {
	return r.moves
}

// Status returns InProgress until every position is matched.
func (r *Round) Status() Status {
	return r.status
}

// Size returns the deck length (twice the pair count).
func (r *Round) Size() int {
	return len(r.deck)
}

// Pairs returns the number of pairs in the deck.
func (r *Round) Pairs() int {
	return len(r.deck) / 2
}

// HideDeadline returns the pending mismatch-hide deadline, if one is set.
func (r *Round) HideDeadline() (time.Time, bool) {
	return r.hideAt, !r.hideAt.IsZero()
}

func dedupe(pool []string) []string {
	seen := make(map[string]bool, len(pool))
	out := make([]string, 0, len(pool))
	for _, s := range pool {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Fisher-Yates shuffle using crypto/rand
func shuffle(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		var b [1]byte
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		j := int(b[0]) % (i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
