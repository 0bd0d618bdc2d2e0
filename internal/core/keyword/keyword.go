// Package keyword decides whether a chat message satisfies a campaign rule set
package keyword

import (
	"strings"

	"triggerbot/internal/core/normalize"
	"triggerbot/internal/core/ruleset"
)

// MatchType names the tier a match came from
type MatchType string

const (
	// MatchExact is a hit on exact_matches
	MatchExact MatchType = "EXACT"
	// MatchKeyword is a hit on keywords
	MatchKeyword MatchType = "KEYWORD"
	// MatchSynonym is a hit on a synonym group; Text is the group's main word
	MatchSynonym MatchType = "SYNONYM"
)

// Result is a successful match
type Result struct {
	// Text is the phrase as authored in the rule set, not normalized
	Text string
	Type MatchType
}

// Contains reports whether phrase occurs in msg as a substring, or failing
// that, whether every token of phrase appears among the tokens of msg
// Both arguments must already be normalized; an empty phrase never matches
func Contains(msg, phrase string) bool {
	if phrase == "" {
		return false
	}
	if strings.Contains(msg, phrase) {
		return true
	}
	want := normalize.Tokens(phrase)
	if len(want) < 2 {
		// a single token that is not a substring cannot be a token either
		return false
	}
	have := make(map[string]struct{}, 16)
	for _, t := range normalize.Tokens(msg) {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

type phrase struct {
	raw  string
	norm string
}

type group struct {
	word phrase
	alts []phrase
}

// Matcher is a rule set with every phrase normalized once
// It is immutable and safe for concurrent use
type Matcher struct {
	excluded []string
	exact    []phrase
	keywords []phrase
	synonyms []group
}

// Compile normalizes every phrase of rs
func Compile(rs ruleset.RuleSet) *Matcher {
	m := &Matcher{
		exact:    phrases(rs.ExactMatches),
		keywords: phrases(rs.Keywords),
	}
	for _, w := range rs.ExcludedWords {
		if n := normalize.Normalize(w); n != "" {
			m.excluded = append(m.excluded, n)
		}
	}
	for _, s := range rs.Synonyms {
		m.synonyms = append(m.synonyms, group{
			word: phrase{raw: s.Word, norm: normalize.Normalize(s.Word)},
			alts: phrases(s.Alternatives),
		})
	}
	return m
}

func phrases(in []string) []phrase {
	if len(in) == 0 {
		return nil
	}
	out := make([]phrase, 0, len(in))
	for _, s := range in {
		out = append(out, phrase{raw: s, norm: normalize.Normalize(s)})
	}
	return out
}

// Match evaluates a raw message
// Tier order: excluded (veto), exact, keyword, synonym; first hit in a tier wins
func (m *Matcher) Match(raw string) (Result, bool) {
	return m.MatchNormalized(normalize.Normalize(raw))
}

// MatchNormalized is Match for a message that is already normalized
func (m *Matcher) MatchNormalized(msg string) (Result, bool) {
	if msg == "" || m == nil {
		return Result{}, false
	}
	for _, x := range m.excluded {
		if strings.Contains(msg, x) {
			return Result{}, false
		}
	}
	for _, p := range m.exact {
		if Contains(msg, p.norm) {
			return Result{Text: p.raw, Type: MatchExact}, true
		}
	}
	for _, p := range m.keywords {
		if Contains(msg, p.norm) {
			return Result{Text: p.raw, Type: MatchKeyword}, true
		}
	}
	for _, g := range m.synonyms {
		if g.word.norm != "" && strings.Contains(msg, g.word.norm) {
			return Result{Text: g.word.raw, Type: MatchSynonym}, true
		}
		for _, a := range g.alts {
			if a.norm != "" && strings.Contains(msg, a.norm) {
				return Result{Text: g.word.raw, Type: MatchSynonym}, true
			}
		}
	}
	return Result{}, false
}

// Match compiles rs and evaluates raw against it
func Match(raw string, rs ruleset.RuleSet) (Result, bool) {
	return Compile(rs).Match(raw)
}
