/*
Copyright © 2026 Sprout Games <hello@sprout.games>
*/

// Package spelling implements the listen-and-spell quiz: a fixed word list
// played front to back, one point per correctly spelled word. Saying the
// words out loud is the presentation layer's job; this package only tracks
// progress and judges answers.
package spelling

import (
	"encoding/csv"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyList is returned by NewQuiz when no words are provided.
var ErrEmptyList = errors.New("word list has no words")

// Quiz tracks one pass through a word list. Not safe for concurrent use.
type Quiz struct {
	words  []string
	index  int
	points int
}

// NewQuiz starts a quiz over the given words, in order.
func NewQuiz(words []string) (*Quiz, error) {
	if len(words) == 0 {
		return nil, ErrEmptyList
	}
	return &Quiz{words: append([]string(nil), words...)}, nil
}

// Word returns the word currently being spelled, or false once the list is
// exhausted.
func (q *Quiz) Word() (string, bool) {
	if q.index >= len(q.words) {
		return "", false
	}
	return q.words[q.index], true
}

// Check judges the guess against the current word and advances to the next
// word either way. A correct answer earns one point. Comparison is forgiving
// about case, whitespace and Unicode formatting. Once the list is finished,
// Check is a no-op returning false.
func (q *Quiz) Check(guess string) bool {
	word, ok := q.Word()
	if !ok {
		return false
	}

	correct := normalize(guess) == normalize(word)
	if correct {
		q.points++
	}
	q.index++

	return correct
}

// Restart replays the same list from the first word with zero points.
func (q *Quiz) Restart() {
	q.index = 0
	q.points = 0
}

// Index returns how many words have been attempted so far.
func (q *Quiz) Index() int {
	return q.index
}

// Len returns the number of words in the list.
func (q *Quiz) Len() int {
	return len(q.words)
}

// Points returns the number of correctly spelled words so far.
func (q *Quiz) Points() int {
	return q.points
}

// Finished reports whether every word has been attempted.
func (q *Quiz) Finished() bool {
	return q.index >= len(q.words)
}

// normalize canonicalizes a spelling for comparison: NFKC normalization,
// all whitespace removed, lowercased.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// sentenceOverrides maps tricky words to hand-written example sentences.
// Everything else gets a generated "I see a ..." sentence.
var sentenceOverrides = map[string]string{
	"is":     "It is big.",
	"and":    "We play and run.",
	"for":    "This is for you.",
	"she":    "She can hop.",
	"then":   "We ate, then we ran.",
	"one":    "I have one dog.",
	"an":     "I see an ant.",
	"it":     "It is red.",
	"him":    "I can see him.",
	"many":   "I have many books.",
	"just":   "I just won.",
	"cat":    "The cat sat.",
	"nap":    "I take a nap.",
	"pan":    "The pan is hot.",
	"pin":    "I use a pin.",
	"sip":    "Take a sip.",
	"fit":    "I can fit the lid.",
	"find":   "I can find it.",
	"big":    "It is big.",
	"did":    "I did it.",
	"dig":    "We dig in the sand.",
	"in":     "We are in a car.",
	"pig":    "The pig is pink.",
	"sit":    "Sit with me.",
	"are":    "You are kind.",
	"buy":    "We buy milk.",
	"little": "The dog is little.",
	"said":   "He said hello.",
	"too":    "I want one too.",
	"up":     "Look up.",
	"will":   "I will help.",
	"you":    "You can do it.",
}

// noArticle holds words that read badly after "I see a/an".
var noArticle = map[string]bool{
	"many": true, "few": true, "some": true, "none": true,
	"one": true, "two": true, "three": true,
	"she": true, "he": true, "they": true, "we": true, "it": true,
	"and": true, "or": true, "for": true, "then": true, "is": true,
}

// Sentence builds a short example sentence using the word, for the browser
// voice to read out.
func Sentence(word string) string {
	w := strings.ToLower(word)
	if w == "" {
		return ""
	}
	if s, ok := sentenceOverrides[w]; ok {
		return s
	}
	if noArticle[w] {
		return "We can use the word '" + word + "'."
	}
	article := "a"
	if strings.ContainsRune("aeiou", rune(w[0])) {
		article = "an"
	}
	return "I see " + article + " " + word + "."
}

// ParseList splits a pasted word list on newlines and commas, dropping
// blanks.
func ParseList(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, ",", "\n"), "\n")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

var tokenSplit = regexp.MustCompile(`[^A-Za-z']+`)

// ParseText extracts a word list from free text: lowercase alphabetic tokens
// between one and ten letters, deduplicated in order of first appearance.
func ParseText(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, t := range tokenSplit.Split(text, -1) {
		w := strings.ToLower(strings.TrimSpace(t))
		if w == "" || len(w) > 10 || seen[w] {
			continue
		}
		if !isAlpha(w) {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// ParseCSV extracts a word list from CSV content by scoring each column for
// short word-like tokens and keeping the best one.
func ParseCSV(raw string) []string {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		return ParseText(raw)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var best []string
	bestScore := -1
	for col := 0; col < width; col++ {
		var cells []string
		for _, row := range rows {
			if col < len(row) {
				cells = append(cells, row[col])
			}
		}
		words := ParseText(strings.Join(cells, " "))
		if len(words) > bestScore {
			bestScore = len(words)
			best = words
		}
	}
	return best
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
