package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "triggerbot/internal/platform/errors"
)

type blockBody struct {
	Reason string `json:"reason" validate:"required,max=200"`
	Hours  *int   `json:"hours,omitempty" validate:"omitempty,min=1,max=8760"`
}

type optBody struct {
	Note string `json:"note,omitempty"`
}

func req(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON[blockBody](req(`{"reason":"spam","hours":24}`))
	if err != nil || got.Reason != "spam" || got.Hours == nil || *got.Hours != 24 {
		t.Fatalf("got %+v err=%v", got, err)
	}

	got, err = ParseJSON[blockBody](req(`{"reason":"abuse"}`))
	if err != nil || got.Hours != nil {
		t.Fatalf("indefinite block should parse: %+v %v", got, err)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name, body string
		code       perr.ErrorCode
		field      string
	}{
		{"unknown field", `{"reason":"x","until":"tomorrow"}`, perr.ErrorCodeJSON, ""},
		{"broken", `{"reason":`, perr.ErrorCodeJSON, ""},
		{"trailing", `{"reason":"x"}{}`, perr.ErrorCodeJSON, ""},
		{"missing reason", `{"hours":2}`, perr.ErrorCodeValidation, "reason"},
		{"zero hours", `{"reason":"x","hours":0}`, perr.ErrorCodeValidation, "hours"},
		{"empty body", ``, perr.ErrorCodeValidation, "reason"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseJSON[blockBody](req(c.body))
			e, ok := perr.As(err)
			if !ok || e.Code() != c.code {
				t.Fatalf("err = %v", err)
			}
			if e.Field() != c.field {
				t.Fatalf("field = %q, want %q", e.Field(), c.field)
			}
		})
	}
}

func TestParseJSON_NoBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	got, err := ParseJSON[optBody](r)
	if err != nil || got.Note != "" {
		t.Fatalf("got %+v err=%v", got, err)
	}
}
