// Package grounding turns a free-text scenario into short, sourced
// historical facts used to anchor the generated timeline.
package grounding

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/timemachine/internal/metrics"
	"github.com/MikeSquared-Agency/timemachine/internal/wikipedia"
)

const (
	MaxTerms        = 3
	PagesPerTerm    = 2
	MaxFacts        = 5
	summaryMaxRunes = 200
	minTokenLen     = 4
)

// Searcher is the knowledge source the extractor queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]wikipedia.Page, error)
	Summary(ctx context.Context, key string) (string, error)
	PageURL(key string) string
}

// Fact is one sourced historical summary.
type Fact struct {
	Title     string
	Summary   string
	SourceURL string
}

// String renders the fact as "<title>: <summary up to 200 runes>...".
func (f Fact) String() string {
	s := f.Summary
	if r := []rune(s); len(r) > summaryMaxRunes {
		s = string(r[:summaryMaxRunes])
	}
	return f.Title + ": " + s + "..."
}

type trigger struct {
	matches func(lower string) bool
	terms   []string
}

func contains(sub string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, sub) }
}

// Evaluated top to bottom; every matching trigger contributes its terms.
var triggers = []trigger{
	{contains("gandhi"), []string{"Mahatma Gandhi", "Indian independence movement"}},
	{contains("world war"), []string{"World War"}},
	{contains("einstein"), []string{"Albert Einstein"}},
	{func(lower string) bool {
		return strings.Contains(lower, "1940") || strings.Contains(lower, "1950")
	}, []string{"1940s history"}},
}

var stopWords = map[string]bool{
	"what":   true,
	"would":  true,
	"happen": true,
	"during": true,
}

// SearchTerms returns the candidate terms for a scenario: triggered phrases
// first, then long tokens in scenario order. The result is not truncated.
func SearchTerms(scenario string) []string {
	lower := strings.ToLower(scenario)

	var terms []string
	for _, t := range triggers {
		if t.matches(lower) {
			terms = append(terms, t.terms...)
		}
	}
	for _, word := range strings.Fields(scenario) {
		if utf8.RuneCountInString(word) > minTokenLen && !stopWords[strings.ToLower(word)] {
			terms = append(terms, word)
		}
	}
	return terms
}

type Extractor struct {
	search  Searcher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(search Searcher, m *metrics.Metrics, logger *slog.Logger) *Extractor {
	return &Extractor{search: search, metrics: m, logger: logger}
}

// Extract returns up to MaxFacts formatted facts for the scenario. Lookup
// failures drop the affected term and are never returned.
func (e *Extractor) Extract(ctx context.Context, scenario string) []string {
	facts := e.Facts(ctx, scenario)

	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.String()
	}
	e.metrics.GroundingFacts(len(out))
	return out
}

// Facts is Extract without the string rendering.
func (e *Extractor) Facts(ctx context.Context, scenario string) []Fact {
	terms := SearchTerms(scenario)
	if len(terms) > MaxTerms {
		terms = terms[:MaxTerms]
	}

	facts := make([]Fact, 0, MaxFacts)
	for _, term := range terms {
		if len(facts) >= MaxFacts {
			break
		}
		got, err := e.lookup(ctx, term, MaxFacts-len(facts))
		if err != nil {
			e.logger.Warn("grounding lookup failed", "term", term, "error", err)
			e.metrics.GroundingError()
			continue
		}
		facts = append(facts, got...)
	}
	return facts
}

// lookup fetches facts for one term. Any failure discards the whole term.
func (e *Extractor) lookup(ctx context.Context, term string, room int) ([]Fact, error) {
	pages, err := e.search.Search(ctx, term, PagesPerTerm)
	if err != nil {
		return nil, err
	}
	if len(pages) > room {
		pages = pages[:room]
	}

	facts := make([]Fact, 0, len(pages))
	for _, p := range pages {
		summary, err := e.search.Summary(ctx, p.Key)
		if err != nil {
			return nil, err
		}
		facts = append(facts, Fact{
			Title:     p.Title,
			Summary:   summary,
			SourceURL: e.search.PageURL(p.Key),
		})
	}
	return facts, nil
}
