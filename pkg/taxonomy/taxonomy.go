package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindCategory      Kind = "category"
	KindPaymentMethod Kind = "payment_method"
)

var (
	ErrEmptyKey         = errors.New("empty taxonomy key")
	ErrDuplicateKey     = errors.New("duplicate taxonomy key")
	ErrDuplicateSynonym = errors.New("synonym shared by more than one entry")
	ErrEmptySynonym     = errors.New("empty synonym")
)

type Entry struct {
	Key         string
	DisplayName string
	Synonyms    []string
}

type Match struct {
	Key   string
	Start int
	End   int
}

// Taxonomy is an immutable synonym table for one kind of key. Lookups are
// safe for concurrent use.
type Taxonomy struct {
	kind      Kind
	entries   []Entry
	byKey     map[string]Entry
	bySynonym map[string]string
	// synonyms sorted by token count desc so the longest phrase wins
	phrases  [][]string
	maxWords int
}

func New(kind Kind, entries []Entry) (*Taxonomy, error) {
	t := &Taxonomy{
		kind:      kind,
		byKey:     make(map[string]Entry, len(entries)),
		bySynonym: make(map[string]string),
	}

	for _, entry := range entries {
		if entry.Key == "" {
			return nil, fmt.Errorf("%s: %w", kind, ErrEmptyKey)
		}
		if _, exists := t.byKey[entry.Key]; exists {
			return nil, fmt.Errorf("%s %q: %w", kind, entry.Key, ErrDuplicateKey)
		}

		normalized := Entry{Key: entry.Key, DisplayName: entry.DisplayName}
		for _, synonym := range append([]string{entry.DisplayName}, entry.Synonyms...) {
			s := Normalize(synonym)
			if s == "" {
				if synonym == entry.DisplayName {
					continue
				}
				return nil, fmt.Errorf("%s %q: %w", kind, entry.Key, ErrEmptySynonym)
			}
			if owner, exists := t.bySynonym[s]; exists {
				if owner == entry.Key {
					continue
				}
				return nil, fmt.Errorf("%s %q and %q share %q: %w", kind, owner, entry.Key, s, ErrDuplicateSynonym)
			}
			t.bySynonym[s] = entry.Key
			normalized.Synonyms = append(normalized.Synonyms, s)
		}

		t.byKey[entry.Key] = normalized
		t.entries = append(t.entries, normalized)
	}

	for synonym := range t.bySynonym {
		words := strings.Fields(synonym)
		t.phrases = append(t.phrases, words)
		if len(words) > t.maxWords {
			t.maxWords = len(words)
		}
	}
	sort.Slice(t.phrases, func(i, j int) bool {
		if len(t.phrases[i]) != len(t.phrases[j]) {
			return len(t.phrases[i]) > len(t.phrases[j])
		}
		return strings.Join(t.phrases[i], " ") < strings.Join(t.phrases[j], " ")
	})

	return t, nil
}

func (t *Taxonomy) Kind() Kind {
	return t.kind
}

func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Taxonomy) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

func (t *Taxonomy) DisplayName(key string) string {
	if entry, ok := t.byKey[key]; ok {
		return entry.DisplayName
	}
	return key
}

// Resolve accepts an exact key, or matches the whole normalized input against
// the synonym table.
func (t *Taxonomy) Resolve(token string) (string, bool) {
	if _, ok := t.byKey[token]; ok {
		return token, true
	}
	key, ok := t.bySynonym[Normalize(token)]
	return key, ok
}

// Match scans a stream of normalized tokens and returns non-overlapping synonym
// matches in encounter order. At each position the longest synonym wins, and
// matching never looks inside a token.
func (t *Taxonomy) Match(tokens []string) []Match {
	var matches []Match

	for i := 0; i < len(tokens); {
		matched := false
		for n := min(t.maxWords, len(tokens)-i); n > 0; n-- {
			phrase := strings.Join(tokens[i:i+n], " ")
			if key, ok := t.bySynonym[phrase]; ok {
				matches = append(matches, Match{Key: key, Start: i, End: i + n})
				i += n
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}

	return matches
}

// Synonyms returns every normalized synonym phrase, longest first.
func (t *Taxonomy) Synonyms() []string {
	out := make([]string, 0, len(t.phrases))
	for _, words := range t.phrases {
		out = append(out, strings.Join(words, " "))
	}
	return out
}
