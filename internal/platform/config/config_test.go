package config

import (
	"testing"
	"time"

	kit "triggerbot/internal/platform/testkit"
)

func TestPrefix(t *testing.T) {
	c := New().Prefix("CORE_").Prefix("DISPATCH_")
	if got := c.key("SEND_TIMEOUT"); got != "CORE_DISPATCH_SEND_TIMEOUT" {
		t.Fatalf("key() = %q", got)
	}
}

func TestMust(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_NAME", "  bot ")
	t.Setenv("T_N", "8")
	t.Setenv("T_BAD", "x")
	t.Setenv("T_D", "1500ms")
	t.Setenv("T_PORT", "4000")
	t.Setenv("T_PORT_BAD", "70000")

	if c.MustString("NAME") != "bot" || c.MustInt("N") != 8 {
		t.Fatalf("MustString/MustInt mismatch")
	}
	if c.MustDuration("D") != 1500*time.Millisecond {
		t.Fatalf("MustDuration mismatch")
	}
	if c.MustPort("PORT") != ":4000" {
		t.Fatalf("MustPort mismatch")
	}
	kit.MustPanic(t, func() { c.MustString("MISSING") })
	kit.MustPanic(t, func() { c.MustInt("BAD") })
	kit.MustPanic(t, func() { c.MustDuration("BAD") })
	kit.MustPanic(t, func() { c.MustPort("PORT_BAD") })
	kit.MustPanic(t, func() { c.Require("NAME", "MISSING") })
	kit.MustNotPanic(t, func() { c.Require("NAME", "N") })
}

func TestMay(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_H", "5")
	t.Setenv("M_H_BAD", "five")
	t.Setenv("M_ON", "true")
	t.Setenv("M_GAP", "2s")
	t.Setenv("M_BLANK", "   ")

	if c.MayInt("H", 3) != 5 || c.MayInt("H_BAD", 3) != 3 || c.MayInt("NONE", 3) != 3 {
		t.Fatalf("MayInt mismatch")
	}
	if !c.MayBool("ON", false) || c.MayBool("H_BAD", true) != true {
		t.Fatalf("MayBool mismatch")
	}
	if c.MayDuration("GAP", time.Second) != 2*time.Second || c.MayDuration("H_BAD", time.Second) != time.Second {
		t.Fatalf("MayDuration mismatch")
	}
	if c.MayString("BLANK", "def") != "def" {
		t.Fatalf("blank should fall back to default")
	}
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_OK", "https://cdn.example.com/base")
	t.Setenv("U_REL", "/media")

	if u := c.MayURL("OK"); u == nil || u.Host != "cdn.example.com" {
		t.Fatalf("MayURL ok = %v", u)
	}
	if c.MayURL("REL") != nil || c.MayURL("NONE") != nil {
		t.Fatalf("relative and missing urls should be nil")
	}
}

func TestMayCSV_MayEnum(t *testing.T) {
	c := New().Prefix("E_")
	t.Setenv("E_LIST", " a, ,b ")
	t.Setenv("E_EMPTY", " , ")
	t.Setenv("E_MODE", "JSON")
	t.Setenv("E_MODE_BAD", "yaml")

	if got := c.MayCSV("LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV = %v", got)
	}
	if got := c.MayCSV("EMPTY", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Fatalf("MayCSV default = %v", got)
	}
	if c.MayEnum("MODE", "console", "console", "json") != "json" {
		t.Fatalf("MayEnum should normalize case")
	}
	if c.MayEnum("NONE", "", "a") != "" {
		t.Fatalf("empty default should pass")
	}
	kit.MustPanic(t, func() { c.MayEnum("MODE_BAD", "console", "console", "json") })
}
