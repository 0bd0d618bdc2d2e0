// Package ruleset parses a campaign's keyword rule document into a validated RuleSet
//
// The stored document is a JSON object with four optional fields:
//
//	{
//	  "exact_matches":  ["yanachaga ecovillage"],
//	  "keywords":       ["tour", "precio"],
//	  "synonyms":       {"tour": ["paseo", "excursion"]},
//	  "excluded_words": ["trabajo"]
//	}
//
// Synonym key order is significant and preserved. Unknown fields and wrong
// types are rejected so a broken document fails loudly instead of silently
// matching nothing.
package ruleset

import (
	"bytes"
	"encoding/json"
	"fmt"

	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/validate"
)

// Synonym maps a canonical word to the alternatives that should report it
type Synonym struct {
	Word         string   `json:"word" validate:"required,max=200"`
	Alternatives []string `json:"alternatives" validate:"max=500,dive,max=200"`
}

// RuleSet is the typed form of a keyword rule document
type RuleSet struct {
	ExactMatches  []string `json:"exact_matches" validate:"max=500,dive,max=200"`
	Keywords      []string `json:"keywords" validate:"max=500,dive,max=200"`
	Synonyms      Synonyms `json:"synonyms" validate:"max=500,dive"`
	ExcludedWords []string `json:"excluded_words" validate:"max=500,dive,max=200"`
}

// Empty reports whether the rule set can never match
func (r RuleSet) Empty() bool {
	return len(r.ExactMatches) == 0 && len(r.Keywords) == 0 && len(r.Synonyms) == 0
}

// Synonyms is an insertion-ordered list decoded from a JSON object
type Synonyms []Synonym

// UnmarshalJSON decodes {"word": ["alt", ...], ...} keeping key order
func (s *Synonyms) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("synonyms must be an object of word to list")
	}

	out := Synonyms{}
	seen := map[string]bool{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		word, _ := kt.(string)
		if seen[word] {
			return fmt.Errorf("synonyms: duplicate word %q", word)
		}
		seen[word] = true

		var alts []string
		if err := dec.Decode(&alts); err != nil {
			return fmt.Errorf("synonyms[%q]: %w", word, err)
		}
		out = append(out, Synonym{Word: word, Alternatives: alts})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON writes the object form back, preserving order
func (s Synonyms) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, syn := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(syn.Word)
		if err != nil {
			return nil, err
		}
		alts := syn.Alternatives
		if alts == nil {
			alts = []string{}
		}
		v, err := json.Marshal(alts)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes and validates a rule document
// A missing document (empty or JSON null) is a valid empty RuleSet
// Any other failure is a perr validation error
func Parse(doc []byte) (RuleSet, error) {
	var rs RuleSet
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return rs, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		return RuleSet{}, perr.Wrap(err, perr.ErrorCodeValidation, "rule set: malformed document")
	}
	if dec.More() {
		return RuleSet{}, perr.New(perr.ErrorCodeValidation, "rule set: trailing data after document")
	}
	if err := validate.Struct(rs); err != nil {
		return RuleSet{}, perr.WithOp(err, "ruleset.Parse")
	}
	return rs, nil
}
