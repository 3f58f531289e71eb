package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/diewo77/bespoke-tuition/i18n"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violation is a single field-attributed failure. Code is a catalog key in
// package i18n; Params fill the message verbs.
type Violation struct {
	Field  string `json:"field"`
	Code   string `json:"code"`
	Params []any  `json:"params,omitempty"`
}

// Message renders the violation in lang.
func (v Violation) Message(lang string) string {
	return i18n.Tf(lang, v.Code, v.Params...)
}

// Violations keeps every failure in the order it was found. A field may carry
// several codes.
type Violations []Violation

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a failure for field.
func (v *Violations) Add(field, code string, params ...any) {
	*v = append(*v, Violation{Field: field, Code: code, Params: params})
}

// Merge appends all of other.
func (v *Violations) Merge(other Violations) {
	*v = append(*v, other...)
}

// Has reports whether field failed with code.
func (v Violations) Has(field, code string) bool {
	for _, x := range v {
		if x.Field == field && x.Code == code {
			return true
		}
	}
	return false
}

// Fields lists the failing fields once each, in order of first failure.
func (v Violations) Fields() []string {
	seen := make(map[string]bool, len(v))
	var out []string
	for _, x := range v {
		if !seen[x.Field] {
			seen[x.Field] = true
			out = append(out, x.Field)
		}
	}
	return out
}

// Messages groups rendered messages by field.
func (v Violations) Messages(lang string) map[string][]string {
	out := make(map[string][]string, len(v))
	for _, x := range v {
		out[x.Field] = append(out[x.Field], x.Message(lang))
	}
	return out
}

var (
	lettersOnly = regexp.MustCompile(`^[a-zA-Z]*$`)
	digitsOnly  = regexp.MustCompile(`^[0-9]*$`)
)

// Basic validators
func Required(field, value string, v *Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLength(field, value string, max int, v *Violations) {
	if len([]rune(value)) > max {
		v.Add(field, "max_length", max)
	}
}

func LettersOnly(field, value string, v *Violations) {
	if !lettersOnly.MatchString(value) {
		v.Add(field, "letters_only")
	}
}

func DigitsOnly(field, value string, v *Violations) {
	if !digitsOnly.MatchString(value) {
		v.Add(field, "digits_only")
	}
}

func Email(field, value string, v *Violations) {
	if err := validate.Var(value, "required,email"); err != nil {
		v.Add(field, "email")
	}
}

func RangeInt(field string, val, minVal, maxVal int, v *Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, "out_of_range")
	}
}

// Money checks a currency amount: not negative, at most two decimal places.
func Money(field string, val decimal.Decimal, v *Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
	if !val.Equal(val.Truncate(2)) {
		v.Add(field, "max_decimal_places", 2)
	}
}

// DateWindow checks that an optional end date does not precede from.
func DateWindow(field string, from time.Time, to *time.Time, v *Violations) {
	if to != nil && from.After(*to) {
		v.Add(field, "effective_window")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so violations line up with request payloads.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// tagCodes maps validator tags onto catalog codes.
var tagCodes = map[string]string{
	"required": "required",
	"email":    "email",
	"alpha":    "letters_only",
	"numeric":  "digits_only",
	"max":      "max_length",
	"min":      "out_of_range",
	"gte":      "out_of_range",
	"lte":      "out_of_range",
	"oneof":    "invalid",
}

// Struct runs struct-tag validation on a request payload.
func Struct(s any) Violations {
	var out Violations
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out.Add("", "invalid")
		return out
	}
	for _, fe := range errs {
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = "invalid"
		}
		if code == "max_length" {
			out.Add(fe.Field(), code, fe.Param())
			continue
		}
		out.Add(fe.Field(), code)
	}
	return out
}
