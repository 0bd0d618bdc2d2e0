// Package validate holds the process-wide struct validator with english messages
package validate

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "triggerbot/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Svc bundles the validator and its translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// senderRe accepts chat addresses like 51999000111 or 51999000111@s.whatsapp.net
var senderRe = regexp.MustCompile(`^[0-9A-Za-z+._-]{3,64}(@[0-9A-Za-z.-]{1,64})?$`)

// Get returns the singleton, building it on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// messages use json names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		short(v, trans, "min", "{0} must be at least {1}")
		short(v, trans, "max", "{0} must be at most {1}")

		_ = v.RegisterValidation("sender_id", func(fl validator.FieldLevel) bool {
			return senderRe.MatchString(fl.Field().String())
		})
		short(v, trans, "sender_id", "{0} must be a chat address")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// short registers a one-line message for tag; {1} is the tag param
func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates s and maps failures to a perr validation error carrying the first field
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// Var validates a single value against tag
func Var(v any, tag string) error {
	if err := Get().Validator.Var(v, tag); err != nil {
		_, msg := FieldAndMessage(err)
		return perr.Newf(perr.ErrorCodeValidation, "%s", strings.TrimSpace(msg))
	}
	return nil
}

// FieldAndMessage returns the namespace of the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return trimRoot(fe.Namespace()), fe.Translate(Get().Translator)
	}
	return "", err.Error()
}

// trimRoot drops the struct name prefix: RuleSet.keywords[2] -> keywords[2]
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
