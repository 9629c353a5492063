package nlp

import (
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Parser turns free text into a partial transaction. It is deterministic,
// holds no mutable state and is safe for concurrent use.
type Parser struct {
	registry *taxonomy.Registry
	opts     Options
}

func NewParser(registry *taxonomy.Registry, opts Options) *Parser {
	if registry == nil {
		registry = taxonomy.DefaultRegistry()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ReportingCurrency == "" {
		opts.ReportingCurrency = "MXN"
	}
	return &Parser{registry: registry, opts: opts}
}

func (p *Parser) Registry() *taxonomy.Registry {
	return p.registry
}

// Parse never fails. The worst case is an empty partial with both required
// slots missing.
func (p *Parser) Parse(utterance string, now time.Time) ParseResult {
	result := ParseResult{
		Candidates: make(map[Slot][]Candidate),
	}
	firstSeen := make(map[Slot]int)
	today := calendar.Today(now, p.opts.Location)

	tokens := tokenize(utterance)

	score := 0.0
	if len(tokens) > 0 {
		score += 0.05
	}
	score += p.extractDate(tokens, today, &result, firstSeen)
	score += p.extractAmount(tokens, &result, firstSeen)
	score += p.extractKey(tokens, p.registry.Categories, SlotCategory, &result, firstSeen)
	score += p.extractKey(tokens, p.registry.PaymentMethods, SlotPaymentMethod, &result, firstSeen)

	if note := residualNote(tokens); note != "" {
		result.Partial.Note = &note
		score += 0.05
	}

	for _, slot := range []Slot{SlotAmount, SlotCategory} {
		if !result.Partial.Has(slot) && len(result.Candidates[slot]) == 0 {
			result.MissingSlots = append(result.MissingSlots, slot)
		}
	}

	for slot := range firstSeen {
		result.AmbiguousSlots = append(result.AmbiguousSlots, slot)
	}
	sort.Slice(result.AmbiguousSlots, func(i, j int) bool {
		return firstSeen[result.AmbiguousSlots[i]] < firstSeen[result.AmbiguousSlots[j]]
	})

	score -= 0.15 * float64(len(result.AmbiguousSlots))
	result.Confidence = math.Round(math.Max(0, math.Min(1, score))*100) / 100

	if len(result.Candidates) == 0 {
		result.Candidates = nil
	}

	return result
}

func (p *Parser) extractKey(tokens []token, tax *taxonomy.Taxonomy, slot Slot, result *ParseResult, firstSeen map[Slot]int) float64 {
	matches := tax.Match(matchStream(tokens))
	if len(matches) == 0 {
		return 0
	}

	var keys []string
	seen := make(map[string]bool)
	for _, m := range matches {
		consume(tokens, m.Start, m.End)
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		keys = append(keys, m.Key)
	}

	if len(keys) == 1 {
		switch slot {
		case SlotCategory:
			result.Partial.Category = taxonomy.CategoryKey(keys[0])
			return 0.3
		case SlotPaymentMethod:
			result.Partial.PaymentMethod = taxonomy.PaymentMethodKey(keys[0])
			return 0.15
		}
		return 0
	}

	for _, key := range keys {
		result.Candidates[slot] = append(result.Candidates[slot], Candidate{
			Value: key,
			Label: tax.DisplayName(key),
		})
	}
	firstSeen[slot] = matches[0].Start
	return 0.05
}

func residualNote(tokens []token) string {
	var words []string
	for _, t := range tokens {
		if t.used || t.kind != tokenWord || isStopWord(t.norm) {
			continue
		}
		words = append(words, t.raw)
	}
	return strings.Join(words, " ")
}

// ParseBareAmount accepts a reply that is nothing but an amount, optionally
// with currency words and filler.
func (p *Parser) ParseBareAmount(text string) (decimal.Decimal, string, bool) {
	tokens := tokenize(text)
	candidates := p.amountCandidates(tokens)
	if len(candidates) != 1 {
		return decimal.Zero, "", false
	}

	c := candidates[0]
	for _, idx := range c.consumed {
		tokens[idx].used = true
	}
	for _, t := range tokens {
		if t.used {
			continue
		}
		if t.kind != tokenWord || !isStopWord(t.norm) {
			return decimal.Zero, "", false
		}
	}

	return c.value, c.currency, true
}

// ParseBareDate accepts a reply that names exactly one day.
func (p *Parser) ParseBareDate(text string, now time.Time) (time.Time, bool) {
	tokens := tokenize(text)
	hits := dateHits(tokens, calendar.Today(now, p.opts.Location))
	if len(hits) != 1 {
		return time.Time{}, false
	}
	for _, t := range tokens {
		if t.used {
			continue
		}
		if t.kind != tokenWord || !isStopWord(t.norm) {
			return time.Time{}, false
		}
	}
	return hits[0].date, true
}

// ResolveBare resolves a reply that only names a taxonomy entry. Single-word
// replies get a typo-tolerant second chance.
func (p *Parser) ResolveBare(text string, kind taxonomy.Kind) (string, bool) {
	tax := p.registry.Taxonomy(kind)

	var words []string
	for _, w := range normalizedWords(text) {
		if !isStopWord(w) {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "", false
	}

	phrase := strings.Join(words, " ")
	if key, ok := tax.Resolve(phrase); ok {
		return key, true
	}

	if len(words) != 1 || len(phrase) < 4 {
		return "", false
	}

	bestKey, bestScore, tie := "", 0.0, false
	for _, entry := range tax.Entries() {
		for _, synonym := range entry.Synonyms {
			score := similarity(phrase, synonym)
			switch {
			case score > bestScore:
				bestKey, bestScore, tie = entry.Key, score, false
			case score == bestScore && entry.Key != bestKey:
				tie = true
			}
		}
	}
	if bestScore >= 0.8 && !tie {
		return bestKey, true
	}
	return "", false
}
