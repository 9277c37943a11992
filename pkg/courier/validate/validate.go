// Package validate implements rule-based field validation with aggregated,
// structured error reports.
//
// Rules are pipe-delimited strings in the style of
// "required|numeric|min:0.1|max:50". Every violation across every field is
// collected before a single *Error is returned; validation never fails fast
// on the first problem.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Rules maps field names to pipe-delimited rule lists.
type Rules map[string]string

// Mapper is any record that can flatten itself to a string-keyed map.
// Canonical records implement it via their ToMap methods.
type Mapper interface {
	ToMap() map[string]any
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

// Validator validates one subject against a declarative rule set.
type Validator struct {
	data         map[string]any
	rules        Rules
	messages     map[string]string
	descriptions map[string]string
	courier      string
}

// New creates a validator. The subject may be a map, a Mapper, or any
// struct (flattened by reflection as a fallback).
func New(subject any, rules Rules) *Validator {
	return &Validator{
		data:  subjectToMap(subject),
		rules: rules,
	}
}

// WithMessages overrides default messages. Keys are "field.rule"
// (e.g., "weight.required").
func (v *Validator) WithMessages(messages map[string]string) *Validator {
	v.messages = messages
	return v
}

// WithDescriptions attaches long-form field descriptions for humanized
// reports.
func (v *Validator) WithDescriptions(descriptions map[string]string) *Validator {
	v.descriptions = descriptions
	return v
}

// WithCourier tags the resulting error with a courier name.
func (v *Validator) WithCourier(name string) *Validator {
	v.courier = name
	return v
}

// Validate runs every rule on every field and returns nil or a single
// *Error carrying all violations.
func (v *Validator) Validate() error {
	errs := make(map[string][]string)

	for field, ruleList := range v.rules {
		v.validateField(field, ruleList, errs)
	}

	if len(errs) == 0 {
		return nil
	}
	return &Error{
		Courier:      v.courier,
		Fields:       errs,
		Descriptions: v.descriptions,
	}
}

func (v *Validator) validateField(field, ruleList string, errs map[string][]string) {
	rules := strings.Split(ruleList, "|")
	value, present := v.data[field]

	required := false
	for _, rule := range rules {
		name, _, _ := strings.Cut(strings.TrimSpace(rule), ":")
		if name == "required" {
			required = true
			break
		}
	}

	// Optional fields are skipped entirely when absent or empty so they
	// don't spuriously fail type or range rules.
	if !required && (!present || value == nil || value == "") {
		return
	}

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		name, param, _ := strings.Cut(rule, ":")
		if msg := checkRule(field, name, param, value); msg != "" {
			key := field + "." + name
			if custom, ok := v.messages[key]; ok {
				msg = custom
			}
			errs[field] = append(errs[field], msg)
		}
	}
}

// checkRule returns the default violation message, or "" if the rule
// passes. Rules other than required pass on nil values; absence is only the
// required rule's concern.
func checkRule(field, name, param string, value any) string {
	switch name {
	case "required":
		if isEmpty(value) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "string":
		if value != nil {
			if _, ok := value.(string); !ok {
				return fmt.Sprintf("The %s must be a string.", field)
			}
		}
	case "numeric":
		if value != nil && !isNumeric(value) {
			return fmt.Sprintf("The %s must be a number.", field)
		}
	case "integer":
		if value != nil && !isInteger(value) {
			return fmt.Sprintf("The %s must be an integer.", field)
		}
	case "float":
		if value != nil && !isNumeric(value) {
			return fmt.Sprintf("The %s must be a float.", field)
		}
	case "email":
		if value != nil && !emailPattern.MatchString(stringify(value)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "phone":
		if value != nil && !phonePattern.MatchString(stringify(value)) {
			return fmt.Sprintf("The %s must be a valid phone number.", field)
		}
	case "min":
		if param != "" && value != nil && compareValue(value) < bound(param) {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	case "max":
		if param != "" && value != nil && compareValue(value) > bound(param) {
			return fmt.Sprintf("The %s may not be greater than %s.", field, param)
		}
	case "in":
		if param != "" && value != nil {
			allowed := strings.Split(param, ",")
			found := false
			for i := range allowed {
				allowed[i] = strings.TrimSpace(allowed[i])
				if stringify(value) == allowed[i] {
					found = true
				}
			}
			if !found {
				return fmt.Sprintf("The %s must be one of: %s.", field, strings.Join(allowed, ", "))
			}
		}
	case "regex":
		if param != "" && value != nil {
			pattern, err := regexp.Compile(param)
			if err != nil || !pattern.MatchString(stringify(value)) {
				return fmt.Sprintf("The %s format is invalid.", field)
			}
		}
	case "array":
		if value != nil && !isArray(value) {
			return fmt.Sprintf("The %s must be an array.", field)
		}
	case "boolean":
		if value != nil && !isBoolean(value) {
			return fmt.Sprintf("The %s must be a boolean.", field)
		}
	}
	return ""
}

func isEmpty(value any) bool {
	if value == nil || value == "" {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func isNumeric(value any) bool {
	switch t := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(t, 64)
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch t := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		// JSON decoding yields float64 for every number.
		return t == float64(int64(t))
	case string:
		if t == "" {
			return false
		}
		for _, r := range t {
			if !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	}
	return false
}

func isArray(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func isBoolean(value any) bool {
	switch t := value.(type) {
	case bool:
		return true
	case int:
		return t == 0 || t == 1
	case float64:
		return t == 0 || t == 1
	case string:
		return t == "0" || t == "1"
	}
	return false
}

// bound interprets a min/max parameter: numeric bounds compare numerically,
// anything else compares by string length.
func bound(param string) float64 {
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return float64(len(param))
}

func compareValue(value any) float64 {
	if isNumeric(value) {
		switch t := value.(type) {
		case string:
			f, _ := strconv.ParseFloat(t, 64)
			return f
		default:
			return toFloat(value)
		}
	}
	return float64(len(stringify(value)))
}

func toFloat(value any) float64 {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return 0
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// subjectToMap flattens the validation subject. Records supply their own
// ToMap; plain structs fall back to reflection with lowerCamel field keys.
func subjectToMap(subject any) map[string]any {
	switch t := subject.(type) {
	case map[string]any:
		return t
	case Mapper:
		return t.ToMap()
	}

	rv := reflect.ValueOf(subject)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{}
	}

	data := make(map[string]any, rv.NumField())
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		data[lowerCamel(f.Name)] = rv.Field(i).Interface()
	}
	return data
}

func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
