/*
Copyright © 2026 Sprout Games <hello@sprout.games>
*/

package main

import (
	"fmt"
	"os"

	"github.com/sprout-games/playroom/games/spelling"
)

// defaultWords is the built-in kindergarten list used when no --word-list
// file is given.
var defaultWords = []string{
	"big", "did", "dig", "in", "pig",
	"sit", "fit", "it", "pin", "sip",
	"are", "buy", "little", "said", "too", "up", "will", "you",
}

// loadWordList reads the configured spelling list, falling back to the
// built-in defaults when no path is set.
func loadWordList(cfg *Config) ([]string, error) {
	if cfg.wordList == "" {
		return defaultWords, nil
	}

	data, err := os.ReadFile(cfg.wordList)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %q: %w", cfg.wordList, err)
	}

	words := spelling.ParseList(string(data))
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %q contains no words", cfg.wordList)
	}

	logf(cfg, "WORDS: Loaded %d words from %s (%s)", len(words), cfg.wordList, humanReadableSize(int64(len(data))))

	return words, nil
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
