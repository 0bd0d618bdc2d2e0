// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/validate"
)

// MaxBytes caps request bodies; ops payloads are tiny
const MaxBytes int64 = 64 << 10

// ParseJSON decodes the body into T, rejects unknown fields and trailing data,
// then validates T; a missing body decodes to the zero T before validation
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero, dst T
	if r.Body == nil || r.Body == http.NoBody {
		return dst, validate.Struct(dst)
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if !errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("invalid JSON: %v", err)
		}
	} else if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := validate.Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
