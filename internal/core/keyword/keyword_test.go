package keyword

import (
	"testing"

	"triggerbot/internal/core/normalize"
	"triggerbot/internal/core/ruleset"
)

func TestContains(t *testing.T) {
	cases := []struct {
		msg, phrase string
		want        bool
	}{
		{"hola info del tour", "info del", true},
		{"hola info del tour", "tour info", true},
		{"hola info del tour", "tour precio", false},
		{"hola info del tour", "", false},
		{"", "tour", false},
		{"tours", "tour", true},
		{"hola yanachaga y su ecovillage", "yanachaga ecovillage", true},
		{"ecovillage ecovillage", "ecovillage yanachaga", false},
		{"a b", "b b", true},
	}
	for _, c := range cases {
		if got := Contains(c.msg, c.phrase); got != c.want {
			t.Fatalf("Contains(%q,%q)=%v want %v", c.msg, c.phrase, got, c.want)
		}
	}
}

func TestMatch_YanachagaKeyword(t *testing.T) {
	rs := ruleset.RuleSet{Keywords: []string{"yanachaga ecovillage"}}
	got, ok := Match("Hola! info del Yanachaga Ecovillage, gracias", rs)
	if !ok || got.Type != MatchKeyword || got.Text != "yanachaga ecovillage" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	// not contiguous in the message, still a keyword hit
	got, ok = Match("¿El ecovillage de Yanachaga tiene cupos?", rs)
	if !ok || got.Type != MatchKeyword {
		t.Fatalf("non-contiguous: got %+v ok=%v", got, ok)
	}
}

func TestMatch_ExcludedVetoes(t *testing.T) {
	rs := ruleset.RuleSet{
		ExactMatches:  []string{"quiero el tour"},
		Keywords:      []string{"tour"},
		Synonyms:      ruleset.Synonyms{{Word: "tour", Alternatives: []string{"paseo"}}},
		ExcludedWords: []string{"Trabajo"},
	}
	for _, msg := range []string{
		"Quiero el tour, busco trabajo",
		"trabajos de paseo",
		"TRÁBAJO tour",
	} {
		if got, ok := Match(msg, rs); ok {
			t.Fatalf("%q should be vetoed, got %+v", msg, got)
		}
	}
	if _, ok := Match("quiero el tour", rs); !ok {
		t.Fatalf("expected a match without the excluded word")
	}
}

func TestMatch_ExactBeatsKeyword(t *testing.T) {
	rs := ruleset.RuleSet{
		Keywords:     []string{"precio"},
		ExactMatches: []string{"precio del tour"},
	}
	got, ok := Match("cual es el PRECIO del tour?", rs)
	if !ok || got.Type != MatchExact || got.Text != "precio del tour" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestMatch_FirstInTierWins(t *testing.T) {
	rs := ruleset.RuleSet{Keywords: []string{"info", "tour"}}
	got, _ := Match("tour info", rs)
	if got.Text != "info" {
		t.Fatalf("got %q, want list order to win", got.Text)
	}
}

func TestMatch_SynonymReportsMainWord(t *testing.T) {
	rs := ruleset.RuleSet{Synonyms: ruleset.Synonyms{
		{Word: "precio", Alternatives: []string{"costo", "cuánto"}},
		{Word: "tour", Alternatives: []string{"excursión", "paseo"}},
	}}
	cases := map[string]string{
		"cuanto sale?":        "precio",
		"hay excursiones hoy": "tour",
		"el paseo y su costo": "precio",
		"quiero un tour":      "tour",
	}
	for msg, want := range cases {
		got, ok := Match(msg, rs)
		if !ok || got.Type != MatchSynonym || got.Text != want {
			t.Fatalf("%q: got %+v ok=%v, want %q", msg, got, ok, want)
		}
	}
}

func TestMatch_None(t *testing.T) {
	if _, ok := Match("hola", ruleset.RuleSet{}); ok {
		t.Fatalf("empty rule set matched")
	}
	if _, ok := Match("", ruleset.RuleSet{Keywords: []string{"a"}}); ok {
		t.Fatalf("empty message matched")
	}
	if _, ok := Match("hola", ruleset.RuleSet{Keywords: []string{"", "  ", "!!"}}); ok {
		t.Fatalf("blank phrases must never match")
	}
	var m *Matcher
	if _, ok := m.Match("hola"); ok {
		t.Fatalf("nil matcher matched")
	}
}

func TestMatcher_ReusableAcrossMessages(t *testing.T) {
	m := Compile(ruleset.RuleSet{Keywords: []string{"Información"}})
	if _, ok := m.Match("info"); ok {
		t.Fatalf("no stemming expected")
	}
	if r, ok := m.MatchNormalized(normalize.Normalize("mas INFORMACION porfa")); !ok || r.Text != "Información" {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func BenchmarkMatch(b *testing.B) {
	m := Compile(ruleset.RuleSet{
		ExactMatches:  []string{"yanachaga ecovillage"},
		Keywords:      []string{"tour", "precio", "reserva"},
		Synonyms:      ruleset.Synonyms{{Word: "tour", Alternatives: []string{"paseo", "excursion"}}},
		ExcludedWords: []string{"trabajo"},
	})
	for i := 0; i < b.N; i++ {
		_, _ = m.Match("Hola! quisiera info del paseo a la selva, gracias")
	}
}
