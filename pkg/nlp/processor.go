package nlp

import (
	"ExpenseChat/pkg/taxonomy"
	"math"
	"regexp"
	"strings"
)

type tokenKind uint8

const (
	tokenWord tokenKind = iota
	tokenNumber
	tokenSymbol
	tokenDate
)

type token struct {
	raw     string
	norm    string
	kind    tokenKind
	kSuffix bool
	used    bool
}

// blank never equals a synonym, so consumed positions break phrase matches
const blank = "\x00"

var tokenPattern = regexp.MustCompile(`(\d{1,2}/\d{1,2}(?:/\d{2,4})?)|([$€£])|(\d+(?:[.,]\d+)*)([kK]\b)?|([\p{L}\p{M}]+)`)

func tokenize(text string) []token {
	var tokens []token

	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			tokens = append(tokens, token{raw: m[1], norm: m[1], kind: tokenDate})
		case m[2] != "":
			tokens = append(tokens, token{raw: m[2], norm: m[2], kind: tokenSymbol})
		case m[3] != "":
			tokens = append(tokens, token{raw: m[3] + m[4], norm: m[3], kind: tokenNumber, kSuffix: m[4] != ""})
		case m[5] != "":
			norm := taxonomy.Normalize(m[5])
			if norm == "" {
				continue
			}
			tokens = append(tokens, token{raw: m[5], norm: norm, kind: tokenWord})
		}
	}

	return tokens
}

// matchStream returns the normalized words with consumed or non-word
// positions blanked out.
func matchStream(tokens []token) []string {
	stream := make([]string, len(tokens))
	for i, t := range tokens {
		if t.used || t.kind != tokenWord {
			stream[i] = blank
			continue
		}
		stream[i] = t.norm
	}
	return stream
}

var stopWords = map[string]bool{
	// english
	"i": true, "me": true, "my": true, "mine": true, "we": true, "our": true, "you": true,
	"a": true, "an": true, "the": true, "on": true, "in": true, "at": true, "for": true,
	"with": true, "to": true, "of": true, "from": true, "by": true, "via": true, "using": true,
	"and": true, "or": true, "spent": true, "spend": true, "spending": true, "paid": true,
	"pay": true, "paying": true, "bought": true, "buy": true, "got": true, "get": true,
	"was": true, "is": true, "it": true, "its": true, "that": true, "this": true, "some": true,
	"money": true, "stuff": true, "things": true, "thing": true, "just": true, "about": true,
	"around": true, "like": true, "card": true, "ve": true, "s": true, "t": true, "m": true,
	"ll": true, "also": true, "put": true, "charged": true, "charge": true, "cost": true,
	"costs": true, "expense": true, "expenses": true, "record": true, "add": true, "log": true,
	"please": true, "hey": true, "hi": true, "so": true, "um": true, "yes": true, "ok": true,
	"okay": true, "one": true, "total": true,
	// spanish
	"yo": true, "mi": true, "mis": true, "un": true, "una": true, "unos": true, "unas": true,
	"el": true, "la": true, "los": true, "las": true, "en": true, "con": true, "de": true,
	"del": true, "para": true, "por": true, "y": true, "o": true, "gaste": true, "gasto": true,
	"pague": true, "compre": true, "al": true, "lo": true, "que": true, "se": true, "algo": true,
	"cosas": true, "dinero": true, "tarjeta": true, "fue": true, "fueron": true, "si": true,
}

func isStopWord(norm string) bool {
	return stopWords[norm]
}

// similarity scores two normalized strings in [0,1]; 1 means equal.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	maxLen := math.Max(float64(len(a)), float64(len(b)))
	if maxLen == 0 {
		return 0.0
	}

	return math.Max(0, 1.0-float64(levenshteinDistance(a, b))/maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func normalizedWords(text string) []string {
	return strings.Fields(taxonomy.Normalize(text))
}
