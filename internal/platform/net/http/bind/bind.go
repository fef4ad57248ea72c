// Package bind provides query binding and validation helpers for handlers
package bind

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel is what custom validation funcs receive
type FieldLevel = validator.FieldLevel

// checker is the process wide validator and its english messages
type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	checkerOnce sync.Once
	shared      checker
)

// messages shortens the stock english texts for the tags query structs use
var messages = map[string]string{
	"min":           "{0} must be at least {1}",
	"max":           "{0} must be at most {1}",
	"gtefield":      "{0} must be greater than or equal to {1}",
	"excluded_with": "{0} cannot be combined with {1}",
}

// get builds the validator on first use
// Field names in messages come from the query tag, then json, then the Go name
func get() checker {
	checkerOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = entrans.RegisterDefaultTranslations(v, trans)
		shared = checker{v: v, trans: trans}
		for tag, text := range messages {
			shared.message(tag, text)
		}
	})
	return shared
}

// message replaces the english text of tag; {0} is the field, {1} the tag param
func (c checker) message(tag, text string) {
	_ = c.v.RegisterTranslation(tag, c.trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// RegisterValidation adds a custom tag; msg, when set, is its english message
func RegisterValidation(tag string, fn validator.Func, msg string) error {
	c := get()
	if err := c.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if msg != "" {
		c.message(tag, msg)
	}
	return nil
}

// Validate checks v's validate tags; the first failure becomes a Validation error naming its field
func Validate(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("bind: validator misuse")
		return perr.Validationf("validation error")
	}
	field, msg := ValidationFieldAndMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// Query decodes r's query string into T by `query` tags, then validates it
// Supported field kinds: string, bool, int, int64 and pointers to them
// An absent or empty parameter leaves the field at its zero value
func Query[T any](r *http.Request) (T, error) {
	var dst T
	if err := decodeValues(r.URL.Query(), &dst); err != nil {
		var zero T
		return zero, err
	}
	if err := Validate(dst); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}

func decodeValues(vals url.Values, dst any) error {
	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() != reflect.Struct {
		return perr.Newf(perr.ErrorCodeUnknown, "bind: %T does not point to a struct", dst)
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := sf.Tag.Get("query")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		raw := strings.TrimSpace(vals.Get(name))
		if raw == "" {
			continue
		}
		if err := setField(rv.Field(i), raw); err != nil {
			return perr.WithField(perr.Validationf("%s %v", name, err), name)
		}
	}
	return nil
}

func setField(f reflect.Value, raw string) error {
	if f.Kind() == reflect.Pointer {
		p := reflect.New(f.Type().Elem())
		if err := setField(p.Elem(), raw); err != nil {
			return err
		}
		f.Set(p)
		return nil
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be true or false")
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return errors.New("must be an integer")
		}
		f.SetInt(n)
	default:
		return errors.New("has an unsupported type " + f.Type().String())
	}
	return nil
}

// ValidationFieldAndMessage splits a validator failure into its first field and english message
// Other errors come back with no field and their own text
func ValidationFieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &verrs) && len(verrs) > 0:
		return verrs[0].Field(), verrs[0].Translate(get().trans)
	default:
		return "", err.Error()
	}
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		tag := fld.Tag.Get(key)
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return fld.Name
}
