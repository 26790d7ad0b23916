package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed words.json
var defaultWords []byte

// WordCategory is one named pool of secret words.
type WordCategory struct {
	Category string   `json:"category"`
	Words    []string `json:"words"`
}

// WordSet is the read-only word dataset, loaded and validated once at
// startup.
type WordSet struct {
	categories []WordCategory
}

// loadWords parses either the embedded dataset or the file at path. Every
// category must carry a name and at least one word; entries are trimmed.
func loadWords(path string) (*WordSet, error) {
	data := defaultWords
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading words file: %w", err)
		}
		data = b
	}

	var raw []WordCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing words file: %w", err)
	}

	categories := make([]WordCategory, 0, len(raw))
	for _, c := range raw {
		name := strings.TrimSpace(c.Category)
		if name == "" {
			return nil, fmt.Errorf("words file contains a category without a name")
		}
		words := make([]string, 0, len(c.Words))
		for _, w := range c.Words {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("category %q has no words", name)
		}
		categories = append(categories, WordCategory{Category: name, Words: words})
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("words file contains no categories")
	}

	return &WordSet{categories: categories}, nil
}

// pick draws a uniformly random category and a word within it.
func (ws *WordSet) pick() (category, word string) {
	c := ws.categories[rand.IntN(len(ws.categories))]
	return c.Category, c.Words[rand.IntN(len(c.Words))]
}

func (ws *WordSet) categoryCount() int {
	return len(ws.categories)
}
