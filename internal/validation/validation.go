// Package validation enforces the submission payload schema. Every rule is
// checked in one pass and all failures are collected, so the caller gets the
// complete picture instead of the first error.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	dErrors "willforge/pkg/domain-errors"
)

// Field length and cardinality limits.
const (
	maxNameLength    = 100
	maxAddressLength = 200
	maxCashGift      = 100_000_000
	maxPets          = 10
	maxChildren      = 20
	maxBeneficiaries = 50
	maxDependants    = 10
	maxAssetValue    = 999_999_999_999
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^[0-9\s\-+()]{8,20}$`)
	postcodePattern = regexp.MustCompile(`^\d{4}$`)
	abnPattern      = regexp.MustCompile(`^\d{11}$`)
	acnPattern      = regexp.MustCompile(`^\d{9}$`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
)

var (
	relationshipStatuses = []string{"single", "married", "de_facto", "separated", "divorced", "widowed"}
	executorModes        = []string{"partner_only", "one", "two_joint", "two_joint_and_several"}
	backupExecutorModes  = []string{"none", "partner", "one", "two_joint", "two_joint_and_several"}
	distributionSchemes  = []string{
		"partner_then_children_equal",
		"children_equal",
		"percentages_named",
		"specific_gifts_then_residue",
		"custom_structured",
	}
	beneficiaryTypes        = []string{"individual", "charity"}
	giftRoles               = []string{"residue", "specific_cash", "specific_item", "percentage_only"}
	childRelationships      = []string{"biological", "adopted", "stepchild", "dependent_other"}
	survivorshipDays        = []int{0, 7, 14, 30, 60}
	substitutionRules       = []string{"to_their_children", "redistribute_among_remaining", "to_alternate_beneficiary"}
	minorTrustVestingAges   = []int{18, 21, 25}
	minorTrustTrusteeModes  = []string{"executors_as_trustees", "named_trustee"}
	funeralPreferences      = []string{"burial", "cremation", "no_preference"}
	digitalAssetCategories  = []string{"email", "social_media", "cloud_storage", "crypto"}
	petCareModes            = []string{"select_beneficiary", "new_person"}
	recipientModes          = []string{"select_beneficiary", "new_person"}
	businessInterestTypes   = []string{"sole_trader", "company_shareholding", "partnership", "trust_interest"}
	exclusionCategories     = []string{"former_partner", "child", "stepchild", "dependant_other"}
	exclusionReasons        = []string{"already_provided_for", "estrangement", "financial_independence", "other_structured"}
	lifeSustainingTemplates = []string{
		"comfort_and_dignity_prioritised",
		"palliative_only_in_terminal_or_permanent_unconsciousness",
		"prolong_life_if_reasonable",
	}
	lifeSustainingValues = []string{"comfort", "dignity", "palliative_care", "avoid_burdensome_treatment"}
)

// FieldError pinpoints a single rule failure. Field is the dotted payload
// path including list indexes, e.g. "beneficiaries[2].cash_amount".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Section string `json:"section"`
}

// Result accumulates errors and non-blocking warnings for one payload.
type Result struct {
	Errors   []FieldError `json:"errors"`
	Warnings []FieldError `json:"warnings"`
}

// Valid reports whether no blocking errors were recorded.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

func (r *Result) addError(field, message, code, section string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message, Code: code, Section: section})
}

func (r *Result) addWarning(field, message, code, section string) {
	r.Warnings = append(r.Warnings, FieldError{Field: field, Message: message, Code: code, Section: section})
}

// ErrorsBySection groups errors for form-section display.
func (r *Result) ErrorsBySection() map[string][]FieldError {
	bySection := make(map[string][]FieldError)
	for _, e := range r.Errors {
		section := e.Section
		if section == "" {
			section = "general"
		}
		bySection[section] = append(bySection[section], e)
	}
	return bySection
}

// ToMap serializes the result for API responses. Errors and warnings are
// always arrays, never null.
func (r *Result) ToMap() map[string]any {
	errors := r.Errors
	if errors == nil {
		errors = []FieldError{}
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []FieldError{}
	}
	return map[string]any{
		"ok":       r.Valid(),
		"errors":   errors,
		"warnings": warnings,
	}
}

// Err converts an invalid result into a coded domain error carrying the
// field errors as details. Returns nil when the result is valid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "payload validation failed").WithDetails(r.ToMap())
}

// Coercions. Form clients send booleans and numbers in several shapes; the
// schema accepts the common ones and rejects the rest.

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		lower := strings.ToLower(b)
		return lower == "true" || lower == "1" || lower == "yes" || lower == "on", true
	case int:
		return b == 1, true
	case float64:
		return b == 1, true
	}
	return false, false
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func isEmpty(v any) bool {
	return v == nil || strings.TrimSpace(toString(v)) == ""
}

// Field validators. Each records errors on the result and reports whether
// the value passed, so callers can gate dependent checks.

func (r *Result) checkBool(v any, field string, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	if _, ok := coerceBool(v); !ok {
		r.addError(field, "Must be true or false", "type", section)
		return false
	}
	return true
}

func (r *Result) checkString(v any, field string, required bool, maxLength int, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	s := strings.TrimSpace(toString(v))
	if len(s) > maxLength {
		r.addError(field, fmt.Sprintf("Maximum %d characters allowed", maxLength), "max_length", section)
		return false
	}
	if htmlTagPattern.MatchString(s) {
		r.addError(field, "HTML tags are not allowed", "invalid_chars", section)
		return false
	}
	return true
}

func (r *Result) checkEmail(v any, field string, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	s := strings.TrimSpace(toString(v))
	if len(s) > 254 {
		r.addError(field, "Email address is too long", "max_length", section)
		return false
	}
	if !emailPattern.MatchString(s) {
		r.addError(field, "Please enter a valid email address", "format", section)
		return false
	}
	return true
}

func (r *Result) checkPhone(v any, field string, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	if !phonePattern.MatchString(strings.TrimSpace(toString(v))) {
		r.addError(field, "Please enter a valid phone number", "format", section)
		return false
	}
	return true
}

// checkDate accepts YYYY-MM-DD or RFC 3339. minAge of 0 skips the age check.
func (r *Result) checkDate(v any, field string, required bool, minAge int, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	s := strings.TrimSpace(toString(v))
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		r.addError(field, "Please enter a valid date (YYYY-MM-DD)", "format", section)
		return false
	}
	if minAge > 0 {
		age := time.Since(parsed).Hours() / 24 / 365.25
		if age < float64(minAge) {
			r.addError(field, fmt.Sprintf("Must be at least %d years old", minAge), "min_age", section)
			return false
		}
	}
	return true
}

func (r *Result) checkEnum(v any, field string, allowed []string, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	s := strings.TrimSpace(toString(v))
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	r.addError(field, "Must be one of: "+strings.Join(allowed, ", "), "enum", section)
	return false
}

func (r *Result) checkIntEnum(v any, field string, allowed []int, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	n, ok := coerceInt(v)
	if !ok {
		r.addError(field, "Must be a valid number", "type", section)
		return false
	}
	for _, a := range allowed {
		if n == a {
			return true
		}
	}
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = strconv.Itoa(a)
	}
	r.addError(field, "Must be one of: "+strings.Join(parts, ", "), "enum", section)
	return false
}

func (r *Result) checkAddress(v any, field string, required bool, section string) bool {
	address, ok := v.(map[string]any)
	if !ok {
		if required {
			r.addError(field, "Address is required", "required", section)
		}
		return false
	}
	if !r.checkString(address["street"], field+".street", true, maxAddressLength, section) {
		return false
	}
	if !r.checkString(address["suburb"], field+".suburb", true, 100, section) {
		return false
	}
	if !r.checkString(address["state"], field+".state", true, 50, section) {
		return false
	}
	postcode := address["postcode"]
	if isEmpty(postcode) {
		r.addError(field+".postcode", "Postcode is required", "required", section)
		return false
	}
	if !postcodePattern.MatchString(strings.TrimSpace(toString(postcode))) {
		r.addError(field+".postcode", "Please enter a valid 4-digit postcode", "format", section)
		return false
	}
	return true
}

func (r *Result) checkPositiveNumber(v any, field string, required bool, maxValue float64, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	n, ok := coerceFloat(v)
	if !ok {
		r.addError(field, "Must be a valid number", "type", section)
		return false
	}
	if n < 0 {
		r.addError(field, "Must be a positive number", "min_value", section)
		return false
	}
	if maxValue > 0 && n > maxValue {
		r.addError(field, "Must not exceed "+strconv.FormatFloat(maxValue, 'f', -1, 64), "max_value", section)
		return false
	}
	return true
}

func (r *Result) checkPercentage(v any, field string, required bool, section string) bool {
	if isEmpty(v) {
		if required {
			r.addError(field, "This field is required", "required", section)
		}
		return false
	}
	n, ok := coerceFloat(v)
	if !ok {
		r.addError(field, "Must be a valid percentage", "type", section)
		return false
	}
	if n < 0 || n > 100 {
		r.addError(field, "Percentage must be between 0 and 100", "range", section)
		return false
	}
	return true
}
