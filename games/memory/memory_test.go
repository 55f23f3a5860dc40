/*
Copyright © 2026 Sprout Games <hello@sprout.games>
*/

package memory

import (
	"testing"
	"time"
)

var testClock = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// findPair returns two positions sharing a symbol, or -1s if none exist.
func findPair(r *Round) (int, int) {
	for i := 0; i < r.Size(); i++ {
		for j := i + 1; j < r.Size(); j++ {
			a, _ := r.Face(i)
			b, _ := r.Face(j)
			if a == b {
				return i, j
			}
		}
	}
	return -1, -1
}

// findMismatch returns two unmatched positions with differing symbols, or -1s.
func findMismatch(r *Round) (int, int) {
	for i := 0; i < r.Size(); i++ {
		if r.Matched(i) {
			continue
		}
		for j := i + 1; j < r.Size(); j++ {
			if r.Matched(j) {
				continue
			}
			a, _ := r.Face(i)
			b, _ := r.Face(j)
			if a != b {
				return i, j
			}
		}
	}
	return -1, -1
}

func revealedCount(r *Round) int {
	n := 0
	for i := 0; i < r.Size(); i++ {
		if _, up := r.Face(i); up && !r.Matched(i) {
			n++
		}
	}
	return n
}

func TestNewRoundDeckComposition(t *testing.T) {
	pool := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	for pairs := 3; pairs <= 8; pairs++ {
		r, err := NewRound(pool, pairs)
		if err != nil {
			t.Fatalf("NewRound(%d) returned error: %v", pairs, err)
		}
		if r.Size() != pairs*2 {
			t.Fatalf("deck size = %d, want %d", r.Size(), pairs*2)
		}

		counts := make(map[string]int)
		for i := 0; i < r.Size(); i++ {
			face, up := r.Face(i)
			if up {
				t.Fatalf("position %d face-up in a fresh round", i)
			}
			counts[face]++
		}
		if len(counts) != pairs {
			t.Fatalf("deck has %d distinct symbols, want %d", len(counts), pairs)
		}
		for symbol, n := range counts {
			if n != 2 {
				t.Fatalf("symbol %q occurs %d times, want 2", symbol, n)
			}
		}

		if r.Moves() != 0 || r.Status() != InProgress {
			t.Fatalf("fresh round has moves=%d status=%v", r.Moves(), r.Status())
		}
		if _, pending := r.HideDeadline(); pending {
			t.Fatal("fresh round has a hide deadline set")
		}
	}
}

func TestNewRoundErrors(t *testing.T) {
	tests := []struct {
		name  string
		pool  []string
		pairs int
	}{
		{name: "pool too small", pool: []string{"A", "B"}, pairs: 3},
		{name: "empty pool", pool: nil, pairs: 1},
		{name: "duplicates do not count", pool: []string{"A", "A", "B", "B"}, pairs: 3},
		{name: "zero pairs", pool: []string{"A"}, pairs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRound(tt.pool, tt.pairs); err != ErrInsufficientSymbols {
				t.Fatalf("NewRound() error = %v, want ErrInsufficientSymbols", err)
			}
		})
	}
}

func TestFlipMatch(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	i, j := findPair(r)
	if !r.Flip(i, testClock) {
		t.Fatalf("first flip of %d rejected", i)
	}
	if _, up := r.Face(i); !up {
		t.Fatalf("position %d not face-up after flip", i)
	}
	if r.Moves() != 0 {
		t.Fatalf("moves = %d after single flip, want 0", r.Moves())
	}

	if !r.Flip(j, testClock) {
		t.Fatalf("second flip of %d rejected", j)
	}
	if r.Moves() != 1 {
		t.Fatalf("moves = %d after pair comparison, want 1", r.Moves())
	}
	if !r.Matched(i) || !r.Matched(j) {
		t.Fatal("matching pair not moved to matched set")
	}
	if n := revealedCount(r); n != 0 {
		t.Fatalf("revealed count = %d after match, want 0", n)
	}
	if _, pending := r.HideDeadline(); pending {
		t.Fatal("hide deadline set after a match")
	}
}

func TestFlipMismatchAndTick(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	i, j := findMismatch(r)
	r.Flip(i, testClock)
	r.Flip(j, testClock)

	if r.Moves() != 1 {
		t.Fatalf("moves = %d, want 1", r.Moves())
	}
	deadline, pending := r.HideDeadline()
	if !pending {
		t.Fatal("no hide deadline after mismatch")
	}
	if want := testClock.Add(HideDelay); !deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", deadline, want)
	}
	if n := revealedCount(r); n != 2 {
		t.Fatalf("revealed count = %d during mismatch display, want 2", n)
	}

	// Before the deadline the pair stays visible.
	if r.Tick(testClock.Add(HideDelay / 2)) {
		t.Fatal("Tick before deadline reported a change")
	}
	if n := revealedCount(r); n != 2 {
		t.Fatal("mismatched pair hidden before deadline")
	}

	if !r.Tick(testClock.Add(HideDelay)) {
		t.Fatal("Tick at deadline reported no change")
	}
	if n := revealedCount(r); n != 0 {
		t.Fatalf("revealed count = %d after tick, want 0", n)
	}
	if _, pending := r.HideDeadline(); pending {
		t.Fatal("deadline still set after tick")
	}
	if r.Tick(testClock.Add(HideDelay)) {
		t.Fatal("second Tick reported a change")
	}
}

func TestFlipNoOps(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	i, j := findPair(r)
	r.Flip(i, testClock)

	t.Run("already revealed", func(t *testing.T) {
		if r.Flip(i, testClock) {
			t.Fatal("re-flip of revealed position accepted")
		}
		if r.Moves() != 0 {
			t.Fatalf("moves = %d, want 0", r.Moves())
		}
	})

	r.Flip(j, testClock)

	t.Run("already matched", func(t *testing.T) {
		if r.Flip(i, testClock) || r.Flip(j, testClock) {
			t.Fatal("flip of matched position accepted")
		}
		if r.Moves() != 1 {
			t.Fatalf("moves changed to %d", r.Moves())
		}
	})

	t.Run("out of range", func(t *testing.T) {
		if r.Flip(-1, testClock) || r.Flip(r.Size(), testClock) {
			t.Fatal("out-of-range flip accepted")
		}
	})
}

func TestFlipLockedDuringMismatch(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	i, j := findMismatch(r)
	r.Flip(i, testClock)
	r.Flip(j, testClock)

	// Any third flip before the deadline is ignored outright.
	for pos := 0; pos < r.Size(); pos++ {
		if r.Flip(pos, testClock.Add(HideDelay/2)) {
			t.Fatalf("flip of %d accepted while mismatch on display", pos)
		}
	}
	if n := revealedCount(r); n != 2 {
		t.Fatalf("revealed count = %d, want 2", n)
	}
	if r.Moves() != 1 {
		t.Fatalf("moves = %d, want 1", r.Moves())
	}
}

func TestFlipAfterExpiredDeadline(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	i, j := findMismatch(r)
	r.Flip(i, testClock)
	r.Flip(j, testClock)

	// A click arriving after the delay, with no Tick in between, should hide
	// the stale pair and count as a fresh first flip.
	later := testClock.Add(HideDelay + time.Millisecond)
	if !r.Flip(i, later) {
		t.Fatal("flip after expired deadline rejected")
	}
	if n := revealedCount(r); n != 1 {
		t.Fatalf("revealed count = %d, want 1", n)
	}
	if _, pending := r.HideDeadline(); pending {
		t.Fatal("deadline survived the expired-deadline flip")
	}
}

func TestRoundTermination(t *testing.T) {
	const pairs = 4
	r, err := NewRound([]string{"A", "B", "C", "D"}, pairs)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	// Solve the board by symbol lookup.
	bySymbol := make(map[string][]int)
	for i := 0; i < r.Size(); i++ {
		face, _ := r.Face(i)
		bySymbol[face] = append(bySymbol[face], i)
	}

	solved := 0
	for _, positions := range bySymbol {
		r.Flip(positions[0], testClock)
		r.Flip(positions[1], testClock)
		solved++
		if solved < pairs && r.Status() != InProgress {
			t.Fatalf("finished after %d of %d pairs", solved, pairs)
		}
	}

	if r.Status() != Finished {
		t.Fatal("round not finished after all pairs matched")
	}
	if r.Moves() != pairs {
		t.Fatalf("moves = %d, want %d", r.Moves(), pairs)
	}
	for i := 0; i < r.Size(); i++ {
		if !r.Matched(i) {
			t.Fatalf("position %d not matched at round end", i)
		}
	}

	// Finished rounds ignore further flips.
	if r.Flip(0, testClock) {
		t.Fatal("flip accepted on a finished round")
	}
}

func TestScenarioFromThreePairs(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C"}, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	if r.Size() != 6 {
		t.Fatalf("deck size = %d, want 6", r.Size())
	}

	i, j := findPair(r)
	r.Flip(i, testClock)
	r.Flip(j, testClock)
	if r.Moves() != 1 || !r.Matched(i) || !r.Matched(j) {
		t.Fatalf("after matching flips: moves=%d matched(%d)=%v matched(%d)=%v",
			r.Moves(), i, r.Matched(i), j, r.Matched(j))
	}

	m, n := findMismatch(r)
	r.Flip(m, testClock)
	r.Flip(n, testClock)
	if r.Moves() != 2 {
		t.Fatalf("moves = %d, want 2", r.Moves())
	}
	if revealedCount(r) != 2 {
		t.Fatal("mismatched pair not on display")
	}
	if _, pending := r.HideDeadline(); !pending {
		t.Fatal("no hide deadline pending")
	}

	r.Tick(testClock.Add(time.Second))
	if revealedCount(r) != 0 {
		t.Fatal("revealed set not cleared after tick")
	}
}

func TestRevealInvariants(t *testing.T) {
	r, err := NewRound([]string{"A", "B", "C", "D", "E"}, 5)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}

	// Hammer the board with arbitrary flips and ticks, checking invariants
	// after every step: at most two revealed, and revealed/matched disjoint.
	now := testClock
	for step := 0; step < 200; step++ {
		pos := (step * 7) % (r.Size() + 2) // includes out-of-range
		r.Flip(pos, now)
		if step%3 == 0 {
			now = now.Add(HideDelay / 2)
			r.Tick(now)
		}

		if n := revealedCount(r); n > 2 {
			t.Fatalf("step %d: %d positions revealed", step, n)
		}
		for i := 0; i < r.Size(); i++ {
			_, up := r.Face(i)
			if r.Matched(i) && !up {
				t.Fatalf("step %d: matched position %d reads face-down", step, i)
			}
		}
	}
}
