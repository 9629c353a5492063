package nlp

import (
	"ExpenseChat/pkg/calendar"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencyWords = map[string]string{
	"peso": "MXN", "pesos": "MXN", "mxn": "MXN",
	"dollar": "USD", "dollars": "USD", "bucks": "USD", "usd": "USD", "dolar": "USD", "dolares": "USD",
	"euro": "EUR", "euros": "EUR", "eur": "EUR",
	"gbp": "GBP",
}

var currencyCodes = map[string]bool{"mxn": true, "usd": true, "eur": true, "gbp": true}

var currencySymbols = map[string]string{"€": "EUR", "£": "GBP"}

type amountCandidate struct {
	index      int
	value      decimal.Decimal
	currency   string
	hasContext bool
	consumed   []int
}

func (c amountCandidate) key() string {
	return c.value.String() + "|" + c.currency
}

// parseNumber reads digits with optional separators. A separator followed by
// exactly three digits groups thousands, any other separator is the decimal
// point.
func parseNumber(raw string, kSuffix bool) (decimal.Decimal, bool) {
	last := strings.LastIndexAny(raw, ".,")

	var cleaned string
	switch {
	case last < 0:
		cleaned = raw
	case len(raw)-last-1 == 3:
		cleaned = strings.NewReplacer(".", "", ",", "").Replace(raw)
	default:
		intPart := strings.NewReplacer(".", "", ",", "").Replace(raw[:last])
		cleaned = intPart + "." + raw[last+1:]
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if kSuffix {
		value = value.Mul(decimal.NewFromInt(1000))
	}
	return value, true
}

func (p *Parser) symbolCurrency(symbol string) string {
	if code, ok := currencySymbols[symbol]; ok {
		return code
	}
	return p.opts.ReportingCurrency
}

func (p *Parser) amountCandidates(tokens []token) []amountCandidate {
	var candidates []amountCandidate

	for i, t := range tokens {
		if t.used || t.kind != tokenNumber {
			continue
		}
		value, ok := parseNumber(t.norm, t.kSuffix)
		if !ok {
			continue
		}

		c := amountCandidate{index: i, value: value, consumed: []int{i}}

		if i > 0 && !tokens[i-1].used {
			prev := tokens[i-1]
			if prev.kind == tokenSymbol {
				c.currency = p.symbolCurrency(prev.norm)
				c.hasContext = true
				c.consumed = append(c.consumed, i-1)
			} else if prev.kind == tokenWord && currencyCodes[prev.norm] {
				c.currency = currencyWords[prev.norm]
				c.hasContext = true
				c.consumed = append(c.consumed, i-1)
			}
		}

		if i+1 < len(tokens) && !tokens[i+1].used {
			next := tokens[i+1]
			if next.kind == tokenWord {
				if code, ok := currencyWords[next.norm]; ok {
					c.currency = code
					c.hasContext = true
					c.consumed = append(c.consumed, i+1)
				}
			} else if next.kind == tokenSymbol && !c.hasContext {
				c.currency = p.symbolCurrency(next.norm)
				c.hasContext = true
				c.consumed = append(c.consumed, i+1)
			}
		}

		candidates = append(candidates, c)
	}

	return candidates
}

func (p *Parser) extractAmount(tokens []token, result *ParseResult, firstSeen map[Slot]int) float64 {
	candidates := p.amountCandidates(tokens)

	var pool []amountCandidate
	for _, c := range candidates {
		if c.hasContext {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}
	if len(pool) == 0 {
		return 0
	}

	var distinct []amountCandidate
	seen := make(map[string]bool)
	for _, c := range pool {
		for _, idx := range c.consumed {
			tokens[idx].used = true
		}
		if seen[c.key()] {
			continue
		}
		seen[c.key()] = true
		distinct = append(distinct, c)
	}

	if len(distinct) == 1 {
		value := distinct[0].value
		result.Partial.Amount = &value
		result.Partial.Currency = distinct[0].currency
		if distinct[0].hasContext {
			return 0.35
		}
		return 0.25
	}

	for _, c := range distinct {
		result.Candidates[SlotAmount] = append(result.Candidates[SlotAmount], Candidate{
			Value:    c.value.String(),
			Label:    amountLabel(c.value, c.currency),
			Currency: c.currency,
		})
	}
	firstSeen[SlotAmount] = pool[0].index
	return 0.1
}

func amountLabel(value decimal.Decimal, currency string) string {
	if currency == "" {
		return value.String()
	}
	return value.String() + " " + currency
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday, "miercoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday, "sabado": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January, "enero": time.January,
	"february": time.February, "feb": time.February, "febrero": time.February,
	"march": time.March, "mar": time.March, "marzo": time.March,
	"april": time.April, "apr": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"june": time.June, "jun": time.June, "junio": time.June,
	"july": time.July, "jul": time.July, "julio": time.July,
	"august": time.August, "aug": time.August, "agosto": time.August,
	"september": time.September, "sep": time.September, "sept": time.September, "septiembre": time.September, "setiembre": time.September,
	"october": time.October, "oct": time.October, "octubre": time.October,
	"november": time.November, "nov": time.November, "noviembre": time.November,
	"december": time.December, "dec": time.December, "diciembre": time.December,
}

var ordinalSuffixes = map[string]bool{"st": true, "nd": true, "rd": true, "th": true}

type dateHit struct {
	date  time.Time
	start int
}

// wordsAt reports whether the unconsumed words starting at i spell phrase.
func wordsAt(tokens []token, i int, phrase ...string) bool {
	if i+len(phrase) > len(tokens) {
		return false
	}
	for j, w := range phrase {
		t := tokens[i+j]
		if t.used || t.kind != tokenWord || t.norm != w {
			return false
		}
	}
	return true
}

func consume(tokens []token, from, to int) {
	for i := from; i < to; i++ {
		tokens[i].used = true
	}
}

func dayNumber(t token) (int, bool) {
	if t.used || t.kind != tokenNumber || t.kSuffix || strings.ContainsAny(t.norm, ".,") {
		return 0, false
	}
	n, err := strconv.Atoi(t.norm)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func yearNumber(tokens []token, i int) (int, bool) {
	if i >= len(tokens) {
		return 0, false
	}
	t := tokens[i]
	if t.used || t.kind != tokenNumber || len(t.norm) != 4 {
		return 0, false
	}
	n, err := strconv.Atoi(t.norm)
	if err != nil || n < 1900 || n > 2999 {
		return 0, false
	}
	return n, true
}

func lastWeekday(today time.Time, wd time.Weekday, strict bool) time.Time {
	diff := (int(today.Weekday()) - int(wd) + 7) % 7
	if diff == 0 && strict {
		diff = 7
	}
	return today.AddDate(0, 0, -diff)
}

// resolveDayMonth builds a date, rolling back a year when no year was given
// and the date would land in the future.
func resolveDayMonth(today time.Time, day int, month time.Month, year int, hasYear bool) (time.Time, bool) {
	if !hasYear {
		year = today.Year()
	}
	d, ok := calendar.Date(year, month, day)
	if !ok {
		return time.Time{}, false
	}
	if !hasYear && d.After(today) {
		return calendar.Date(year-1, month, day)
	}
	return d, true
}

func parseSlashDate(raw string, today time.Time) (time.Time, bool) {
	parts := strings.Split(raw, "/")
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}

	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
		if year < 100 {
			year += 2000
		}
		return resolveDayMonth(today, day, time.Month(month), year, true)
	}

	return resolveDayMonth(today, day, time.Month(month), 0, false)
}

func dateHits(tokens []token, today time.Time) []dateHit {
	var hits []dateHit

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.used {
			continue
		}

		switch t.kind {
		case tokenDate:
			if d, ok := parseSlashDate(t.norm, today); ok {
				consume(tokens, i, i+1)
				hits = append(hits, dateHit{date: d, start: i})
			}

		case tokenNumber:
			day, ok := dayNumber(t)
			if !ok {
				continue
			}
			j := i + 1
			if j < len(tokens) && tokens[j].kind == tokenWord && ordinalSuffixes[tokens[j].norm] {
				j++
			}
			if wordsAt(tokens, j, "of") || wordsAt(tokens, j, "de") {
				j++
			}
			if j >= len(tokens) || tokens[j].used || tokens[j].kind != tokenWord {
				continue
			}
			month, ok := months[tokens[j].norm]
			if !ok {
				continue
			}
			j++
			k := j
			if wordsAt(tokens, k, "de") || wordsAt(tokens, k, "of") {
				k++
			}
			year, hasYear := yearNumber(tokens, k)
			if hasYear {
				j = k + 1
			}
			if d, ok := resolveDayMonth(today, day, month, year, hasYear); ok {
				consume(tokens, i, j)
				hits = append(hits, dateHit{date: d, start: i})
			}

		case tokenWord:
			switch {
			case wordsAt(tokens, i, "day", "before", "yesterday"), wordsAt(tokens, i, "antes", "de", "ayer"):
				consume(tokens, i, i+3)
				hits = append(hits, dateHit{date: today.AddDate(0, 0, -2), start: i})
				i += 2
				continue
			case t.norm == "anteayer" || t.norm == "antier":
				consume(tokens, i, i+1)
				hits = append(hits, dateHit{date: today.AddDate(0, 0, -2), start: i})
				continue
			case t.norm == "yesterday" || t.norm == "ayer":
				consume(tokens, i, i+1)
				hits = append(hits, dateHit{date: today.AddDate(0, 0, -1), start: i})
				continue
			case t.norm == "today" || t.norm == "hoy" || t.norm == "tonight":
				consume(tokens, i, i+1)
				hits = append(hits, dateHit{date: today, start: i})
				continue
			}

			if wd, ok := weekdays[t.norm]; ok {
				start, end := i, i+1
				strict := false
				if i > 0 && (wordsAt(tokens, i-1, "last") || wordsAt(tokens, i-1, "past")) {
					start = i - 1
					strict = true
				}
				if wordsAt(tokens, i+1, "pasado") {
					end = i + 2
					strict = true
				}
				consume(tokens, start, end)
				hits = append(hits, dateHit{date: lastWeekday(today, wd, strict), start: start})
				i = end - 1
				continue
			}

			if month, ok := months[t.norm]; ok && i+1 < len(tokens) {
				day, ok := dayNumber(tokens[i+1])
				if !ok {
					continue
				}
				j := i + 2
				if j < len(tokens) && tokens[j].kind == tokenWord && ordinalSuffixes[tokens[j].norm] {
					j++
				}
				year, hasYear := yearNumber(tokens, j)
				if hasYear {
					j++
				}
				if d, ok := resolveDayMonth(today, day, month, year, hasYear); ok {
					consume(tokens, i, j)
					hits = append(hits, dateHit{date: d, start: i})
					i = j - 1
				}
			}
		}
	}

	return hits
}

func (p *Parser) extractDate(tokens []token, today time.Time, result *ParseResult, firstSeen map[Slot]int) float64 {
	hits := dateHits(tokens, today)
	if len(hits) == 0 {
		return 0
	}

	var distinct []dateHit
	seen := make(map[string]bool)
	for _, h := range hits {
		key := calendar.Format(h.date)
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, h)
	}

	if len(distinct) == 1 {
		d := distinct[0].date
		result.Partial.OccurredAt = &d
		return 0.1
	}

	for _, h := range distinct {
		result.Candidates[SlotOccurredAt] = append(result.Candidates[SlotOccurredAt], Candidate{
			Value: calendar.Format(h.date),
			Label: h.date.Format("Mon, Jan 2"),
		})
	}
	firstSeen[SlotOccurredAt] = distinct[0].start
	return 0
}
