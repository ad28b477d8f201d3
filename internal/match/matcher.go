package match

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Matcher classifies a news item against the known ticker registry.
//
// Matching policy: a symbol matches only as a standalone, case-sensitive
// uppercase token ("AAPL earnings" matches AAPL, "it rained" does not match
// IT), while aliases match case-insensitively on word boundaries. False
// negatives are acceptable; false positives from partial-word hits are not.
type Matcher struct {
	symbols map[string]struct{}
	aliases []aliasPattern
}

type aliasPattern struct {
	ticker string
	re     *regexp.Regexp
}

// New builds a Matcher from a symbol -> aliases registry. The registry is
// passed in explicitly; there is no process-wide registry.
func New(registry map[string][]string) *Matcher {
	m := &Matcher{symbols: make(map[string]struct{}, len(registry))}
	for symbol, aliases := range registry {
		sym := strings.ToUpper(strings.TrimSpace(symbol))
		if sym == "" {
			continue
		}
		m.symbols[sym] = struct{}{}
		for _, alias := range aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
			m.aliases = append(m.aliases, aliasPattern{ticker: sym, re: re})
		}
	}
	return m
}

// Match returns the sorted set of tickers mentioned in title or body.
// An empty result is valid and means the item is not relevant to any
// registered ticker.
func (m *Matcher) Match(title, body string) []string {
	text := title + "\n" + body
	found := make(map[string]struct{})

	for _, tok := range tokenize(text) {
		if _, ok := m.symbols[tok]; ok {
			found[tok] = struct{}{}
		}
	}

	for _, ap := range m.aliases {
		if _, ok := found[ap.ticker]; ok {
			continue
		}
		if ap.re.MatchString(text) {
			found[ap.ticker] = struct{}{}
		}
	}

	tickers := make([]string, 0, len(found))
	for t := range found {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// tokenize splits text into symbol candidates. '.' and '-' stay inside a
// token so class shares like BRK.B survive, then get trimmed off the edges
// so sentence punctuation does not hide a match.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
