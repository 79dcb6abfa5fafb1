package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Property payload field names.
const (
	FieldAddress   = "address"
	FieldPrice     = "price"
	FieldBedrooms  = "bedrooms"
	FieldBathrooms = "bathrooms"
	FieldType      = "type"
)

// CreateRequiredFields lists the fields a create payload must supply.
// Updates require none of them.
var CreateRequiredFields = []string{FieldAddress, FieldPrice, FieldBedrooms, FieldBathrooms}

// decimalLiteral matches the unsigned-prefix-free decimal spellings a path id
// may take: optional sign, digits with an optional fraction, optional exponent.
var decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParsePropertyID parses a path identifier with JavaScript Number()
// semantics. Text that is not a number yields ErrInvalidID. A number that
// cannot be a stored id (fractional, infinite, out of int64 range) yields a
// NotFoundError so callers answer 404 without touching the store.
func ParsePropertyID(raw string) (int64, error) {
	s := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	if s == "" {
		return 0, nil
	}

	switch s {
	case "Infinity", "+Infinity", "-Infinity":
		return 0, NewNotFoundError(EntityProperty, s)
	}

	if base := radixPrefix(s); base != 0 {
		n, err := strconv.ParseUint(s[2:], base, 64)
		switch {
		case errors.Is(err, strconv.ErrRange):
			return 0, NewNotFoundError(EntityProperty, s)
		case err != nil:
			return 0, ErrInvalidID
		case n > math.MaxInt64:
			return 0, NewNotFoundError(EntityProperty, s)
		}
		return int64(n), nil
	}

	if !decimalLiteral.MatchString(s) {
		return 0, ErrInvalidID
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Well-formed but out of float64 range.
		return 0, NewNotFoundError(EntityProperty, s)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, NewNotFoundError(EntityProperty, s)
	}
	return int64(f), nil
}

// radixPrefix reports the base of a 0x, 0o or 0b prefixed literal, or 0.
// Signed prefixed literals are not numbers.
func radixPrefix(s string) int {
	if len(s) < 2 || s[0] != '0' {
		return 0
	}
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// ParsePropertyInput decodes a JSON object payload and validates its fields.
// Fields named in required must be present. Present fields are always
// checked for type and sign. On success the returned input carries exactly
// the supplied fields. On failure the error is ErrMalformedBody (wrapped) or
// ValidationErrors listing every rejected field in declaration order.
func ParsePropertyInput(body []byte, required ...string) (PropertyInput, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return PropertyInput{}, err
	}

	v := payloadValidator{
		fields:   fields,
		required: make(map[string]bool, len(required)),
	}
	for _, name := range required {
		v.required[name] = true
	}

	in := PropertyInput{
		Address:   v.text(FieldAddress),
		Price:     v.number(FieldPrice),
		Bedrooms:  v.number(FieldBedrooms),
		Bathrooms: v.number(FieldBathrooms),
		Type:      v.text(FieldType),
	}
	if len(v.errs) > 0 {
		return PropertyInput{}, v.errs
	}
	return in, nil
}

// decodeObject splits a JSON object into its raw members. An empty body is
// an empty object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if body[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return fields, nil
}

type payloadValidator struct {
	fields   map[string]json.RawMessage
	required map[string]bool
	errs     ValidationErrors
}

func (v *payloadValidator) fail(field, format string) {
	v.errs = append(v.errs, NewValidationError(field, fmt.Sprintf(format, field)))
}

// text returns the string value of field, or nil when absent or rejected.
func (v *payloadValidator) text(field string) *string {
	raw, ok := v.fields[field]
	if !ok {
		if v.required[field] {
			v.fail(field, "%s is required")
		}
		return nil
	}

	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		v.fail(field, "%s must be a string")
		return nil
	}
	return &s
}

// number returns the numeric value of field, or nil when absent or rejected.
func (v *payloadValidator) number(field string) *float64 {
	raw, ok := v.fields[field]
	if !ok {
		if v.required[field] {
			v.fail(field, "%s is required")
		}
		return nil
	}

	raw = bytes.TrimSpace(raw)
	var f float64
	if !isJSONNumber(raw) || json.Unmarshal(raw, &f) != nil {
		v.fail(field, "%s must be a number")
		return nil
	}
	if f < 0 {
		v.fail(field, "%s must be a positive number")
		return nil
	}
	return &f
}

func isJSONNumber(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}
