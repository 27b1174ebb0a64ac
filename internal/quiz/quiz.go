// Package quiz generates multiple-choice questions from the destination
// catalog and evaluates submitted answers.
package quiz

import (
	"errors"
	"math/rand/v2"

	"github.com/globetrotter-game/api/internal/catalog"
)

const (
	maxOptions = 4
	maxClues   = 2
)

var (
	// ErrEmptyCatalog is returned when no destinations are loaded.
	ErrEmptyCatalog = errors.New("no destinations available")
	// ErrUnknownQuestion is returned for an out-of-range question ID.
	ErrUnknownQuestion = errors.New("unknown question")
)

// Question is one generated challenge. ID is the catalog index of the
// correct destination and must be echoed back on answer submission.
type Question struct {
	ID      int      `json:"id"`
	Clues   []string `json:"clues"`
	Options []string `json:"options"`
}

// Result is the outcome of evaluating a submitted answer.
type Result struct {
	Correct       bool
	CorrectAnswer string
	FunFact       string
}

// Engine produces questions and scores answers against a catalog.
// It is stateless and safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// NextQuestion picks a random destination, reveals one or two of its
// clues, and builds a shuffled option set of up to four unique city
// names that always includes the correct one. With fewer than four
// unique cities in the catalog the option set is simply smaller.
func (e *Engine) NextQuestion() (Question, error) {
	n := e.catalog.Len()
	if n == 0 {
		return Question{}, ErrEmptyCatalog
	}

	id := rand.IntN(n)
	correct, _ := e.catalog.At(id)

	numClues := 1 + rand.IntN(maxClues)
	if numClues > len(correct.Clues) {
		numClues = len(correct.Clues)
	}
	clues := sample(correct.Clues, numClues)

	options := []string{correct.City}
	seen := map[string]bool{correct.City: true}

	// Walk the other destinations in a uniformly random order, skipping
	// duplicate city names, until the option set is full or exhausted.
	for _, j := range rand.Perm(n) {
		if len(options) == maxOptions {
			break
		}
		if j == id {
			continue
		}
		d, _ := e.catalog.At(j)
		if seen[d.City] {
			continue
		}
		seen[d.City] = true
		options = append(options, d.City)
	}

	rand.Shuffle(len(options), func(a, b int) {
		options[a], options[b] = options[b], options[a]
	})

	return Question{ID: id, Clues: clues, Options: options}, nil
}

// Evaluate checks answer against the destination at questionID. The
// comparison is exact and case-sensitive; options are presented verbatim
// so a well-behaved client submits them verbatim. The fun fact is drawn
// at random, independent of which clues were shown.
func (e *Engine) Evaluate(questionID int, answer string) (Result, error) {
	d, ok := e.catalog.At(questionID)
	if !ok {
		return Result{}, ErrUnknownQuestion
	}

	return Result{
		Correct:       answer == d.City,
		CorrectAnswer: d.City,
		FunFact:       d.FunFacts[rand.IntN(len(d.FunFacts))],
	}, nil
}

// sample returns k elements of src chosen uniformly at random without
// replacement, via a partial Fisher-Yates shuffle.
func sample(src []string, k int) []string {
	picked := make([]string, len(src))
	copy(picked, src)
	for i := 0; i < k; i++ {
		j := i + rand.IntN(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:k]
}
