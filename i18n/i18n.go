// Package i18n holds the message catalog used to turn validation codes into
// human readable text.
package i18n

import (
	"context"
	"fmt"
	"strings"
)

// DefaultLang is used when a request does not ask for a supported language.
const DefaultLang = "en"

type ctxKey struct{}

var catalog = map[string]map[string]string{
	"en": {
		"required":           "Required",
		"invalid":            "Invalid value",
		"max_length":         "Ensure this value has at most %v characters",
		"letters_only":       "Only letters are allowed.",
		"digits_only":        "Only numbers are allowed.",
		"email":              "Enter a valid email address.",
		"out_of_range":       "Value is out of range",
		"max_decimal_places": "Ensure that there are no more than %v decimal places",
		"immutable":          "This value cannot be changed",

		"must_not_be_negative": "Should not be negative",

		"start_after_end":   "The lesson start should be before the lesson end",
		"different_day":     "The lesson start should be same day as lesson end",
		"before_term_start": "The lesson start should be on or after term start %s",
		"after_term_end":    "The lesson end should be on or before term end %s",
		"term_required":     "A term is required to book a lesson",

		"effective_window": "Effective from date should be before effective to date",

		"term_start_after_end":         "Start date should be before end date",
		"half_term_start_after_end":    "Half term start date should be before half term end date",
		"half_term_end_after_term_end": "Half term end date should be before term end date",
		"term_start_after_half_term":   "Start date should be before half term start date",

		"amount_not_positive": "Amount paid needs to be greater than 0",
		"overpaid":            "Amount paid should not be greater than total amount",
		"should_be_part_paid": "Full amount not paid, status should be part paid",
		"should_be_paid":      "Full amount paid, status should be paid",
		"invalid_status":      "Unknown invoice status",
		"nothing_to_invoice":  "There are no uninvoiced lessons for this client",

		"too_many_parents":    "Should not select more than %v parents",
		"not_a_client":        "That email is not linked to a current client. Please contact us if the email is correct",
		"already_registered":  "That email is already registered. Please contact us if you have forgotten your password",
		"email_taken":         "That email is already used by another contact",
		"not_found":           "Not found",
		"password_too_short":  "Password must be at least %v characters",
		"invalid_credentials": "Invalid email or password",
	},
	"fr": {
		"required":           "Requis",
		"invalid":            "Valeur invalide",
		"max_length":         "Cette valeur doit comporter au plus %v caractères",
		"letters_only":       "Seules les lettres sont autorisées.",
		"digits_only":        "Seuls les chiffres sont autorisés.",
		"email":              "Saisissez une adresse e-mail valide.",
		"out_of_range":       "Valeur hors limites",
		"max_decimal_places": "Au plus %v décimales",
		"immutable":          "Cette valeur ne peut pas être modifiée",

		"start_after_end":   "Le début du cours doit précéder sa fin",
		"different_day":     "Le cours doit commencer et finir le même jour",
		"before_term_start": "Le cours doit commencer le %s ou après",
		"after_term_end":    "Le cours doit finir le %s ou avant",

		"amount_not_positive": "Le montant payé doit être supérieur à 0",
		"overpaid":            "Le montant payé ne peut pas dépasser le total",
		"should_be_part_paid": "Montant partiel, le statut doit être partiellement payé",
		"should_be_paid":      "Montant complet, le statut doit être payé",
		"nothing_to_invoice":  "Aucun cours à facturer pour ce client",

		"invalid_credentials": "E-mail ou mot de passe invalide",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if _, ok := catalog[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// T translates code into lang, falling back to the default language and then
// to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if m, ok := msgs[code]; ok {
			return m
		}
	}
	if m, ok := catalog[DefaultLang][code]; ok {
		return m
	}
	return code
}

// Tf is T followed by fmt.Sprintf with args.
func Tf(lang, code string, args ...any) string {
	msg := T(lang, code)
	if len(args) == 0 || !strings.Contains(msg, "%") {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the language stored by WithLang or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
