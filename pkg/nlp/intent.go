package nlp

import (
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/taxonomy"
	"strings"
	"time"
)

var cancelPhrases = map[string]bool{
	"cancel": true, "cancel that": true, "cancel it": true, "never mind": true, "nevermind": true,
	"nvm": true, "forget it": true, "forget about it": true, "stop": true, "olvidalo": true,
	"cancelar": true, "cancela": true, "no importa": true,
}

var cancelPrefixes = []string{"never mind", "nevermind", "forget it", "cancel"}

var questionWords = map[string]bool{
	"where": true, "how": true, "what": true, "which": true, "show": true, "list": true,
	"give": true, "tell": true, "whats": true, "cuanto": true, "cuanta": true, "donde": true,
	"que": true, "cual": true, "muestra": true, "muestrame": true, "dame": true,
}

var metricKeywords = map[string]bool{
	"spend": true, "spent": true, "spending": true, "total": true, "totals": true,
	"summary": true, "breakdown": true, "expenses": true, "expense": true, "category": true,
	"categories": true, "week": true, "month": true, "year": true, "today": true,
	"yesterday": true, "most": true, "more": true, "biggest": true, "top": true,
	"monthly": true, "weekly": true, "gastos": true, "gaste": true, "gasto": true,
	"semana": true, "mes": true, "resumen": true, "categoria": true, "categorias": true,
}

var summaryKeywords = map[string]bool{"summary": true, "breakdown": true, "resumen": true, "report": true}

var topKeywords = map[string]bool{
	"where": true, "most": true, "more": true, "biggest": true, "top": true, "donde": true, "mas": true,
}

// ClassifyIntent decides whether an utterance records an expense, asks about
// past spending or cancels the entry in progress.
func (p *Parser) ClassifyIntent(utterance string, now time.Time) Intent {
	normalized := taxonomy.Normalize(utterance)
	words := strings.Fields(normalized)

	if isCancel(normalized) {
		return Intent{Kind: IntentCancel}
	}

	if len(words) == 0 {
		return Intent{Kind: IntentCapture}
	}

	candidates := p.amountCandidates(tokenize(utterance))
	for _, c := range candidates {
		if c.hasContext {
			return Intent{Kind: IntentCapture}
		}
	}

	// An amount next to a known category is an entry, however it is phrased.
	if len(candidates) > 0 && p.looksLikeEntry(utterance, now) {
		return Intent{Kind: IntentCapture}
	}

	question := questionWords[words[0]] || strings.Contains(normalized, "how much") ||
		(strings.Contains(utterance, "?") && len(candidates) == 0)
	metric, summary := false, false
	for _, w := range words {
		if metricKeywords[w] {
			metric = true
		}
		if summaryKeywords[w] {
			summary = true
		}
	}

	if !(question && metric) && !summary {
		return Intent{Kind: IntentCapture}
	}

	return Intent{Kind: IntentQuery, Query: p.buildQuery(words, summary, now)}
}

func (p *Parser) looksLikeEntry(utterance string, now time.Time) bool {
	r := p.Parse(utterance, now)
	hasAmount := r.Partial.Has(SlotAmount) || len(r.Candidates[SlotAmount]) > 0
	hasCategory := r.Partial.Has(SlotCategory) || len(r.Candidates[SlotCategory]) > 0
	return hasAmount && hasCategory
}

func isCancel(normalized string) bool {
	if cancelPhrases[normalized] {
		return true
	}
	if strings.ContainsAny(normalized, "0123456789") {
		return false
	}
	for _, prefix := range cancelPrefixes {
		if normalized == prefix || strings.HasPrefix(normalized, prefix+" ") {
			return true
		}
	}
	return false
}

func (p *Parser) buildQuery(words []string, summary bool, now time.Time) *QueryRequest {
	today := calendar.Today(now, p.opts.Location)
	q := &QueryRequest{}
	q.Range, q.RangeLabel = queryRange(words, today)

	for _, m := range p.registry.Categories.Match(words) {
		key := taxonomy.CategoryKey(m.Key)
		duplicate := false
		for _, existing := range q.Categories {
			if existing == key {
				duplicate = true
			}
		}
		if !duplicate {
			q.Categories = append(q.Categories, key)
		}
	}

	joined := " " + strings.Join(words, " ") + " "
	top := false
	for _, w := range words {
		if topKeywords[w] {
			top = true
		}
	}

	switch {
	case summary:
		q.Focus = FocusBreakdown
	case top:
		q.Focus = FocusTop
	case strings.Contains(joined, " how much ") || strings.Contains(joined, " total ") ||
		strings.Contains(joined, " cuanto "):
		q.Focus = FocusTotal
	default:
		q.Focus = FocusBreakdown
	}

	return q
}

func hasPhrase(words []string, phrase ...string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, w := range phrase {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func queryRange(words []string, today time.Time) (calendar.Range, string) {
	contains := func(w ...string) bool {
		for _, candidate := range w {
			if hasPhrase(words, strings.Fields(candidate)...) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("last week", "past week", "previous week", "semana pasada"):
		start := calendar.StartOfWeek(today).AddDate(0, 0, -7)
		return calendar.Range{From: start, To: start.AddDate(0, 0, 6)}, "last week"
	case contains("last month", "past month", "previous month", "mes pasado"):
		prev := calendar.StartOfMonth(today).AddDate(0, -1, 0)
		return calendar.Range{From: prev, To: calendar.EndOfMonth(prev)}, "last month"
	case contains("today", "hoy"):
		return calendar.Range{From: today, To: today}, "today"
	case contains("yesterday", "ayer"):
		y := today.AddDate(0, 0, -1)
		return calendar.Range{From: y, To: y}, "yesterday"
	case contains("week", "weekly", "semana"):
		return calendar.Range{From: calendar.StartOfWeek(today), To: today}, "this week"
	case contains("year", "yearly", "ano"):
		return calendar.Range{From: time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), To: today}, "this year"
	default:
		return calendar.Range{From: calendar.StartOfMonth(today), To: today}, "this month"
	}
}
