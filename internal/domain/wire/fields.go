package wire

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse validates raw as JSON and returns its root value.
func Parse(raw []byte) (gjson.Result, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, decodeErr("", "invalid json")
	}
	return gjson.ParseBytes(raw), nil
}

// Field returns the first present value among keys and the key it was found under.
func Field(obj gjson.Result, keys ...string) (gjson.Result, string) {
	for _, key := range keys {
		if v := lookup(obj, key); v.Exists() && v.Type != gjson.Null {
			return v, key
		}
	}
	return gjson.Result{}, ""
}

// RequiredID decodes the identifier stored under the first present key.
func RequiredID(obj gjson.Result, keys ...string) (Identifier, error) {
	value, key := Field(obj, keys...)
	if key == "" {
		return "", decodeErr(firstKey(keys), "missing")
	}
	id, err := IdentifierFrom(value)
	if err != nil {
		return "", WithField(err, key)
	}
	return id, nil
}

// OptionalID is RequiredID that yields the zero Identifier instead of failing.
func OptionalID(obj gjson.Result, keys ...string) Identifier {
	id, err := RequiredID(obj, keys...)
	if err != nil {
		return ""
	}
	return id
}

// RequiredTime decodes a timestamp under the first present key.
func RequiredTime(obj gjson.Result, keys ...string) (string, error) {
	value, key := Field(obj, keys...)
	if key == "" {
		return "", decodeErr(firstKey(keys), "missing")
	}
	ts, err := TimeFrom(value)
	if err != nil {
		return "", WithField(err, key)
	}
	return ts, nil
}

// OptionalTime is RequiredTime that yields "" when absent or malformed.
func OptionalTime(obj gjson.Result, keys ...string) string {
	ts, err := RequiredTime(obj, keys...)
	if err != nil {
		return ""
	}
	return ts
}

// RequiredString returns the string under the first present key.
func RequiredString(obj gjson.Result, keys ...string) (string, error) {
	value, key := Field(obj, keys...)
	if key == "" {
		return "", decodeErr(firstKey(keys), "missing")
	}
	if value.Type != gjson.String {
		return "", decodeErr(key, "expected string")
	}
	return value.Str, nil
}

// OptionalString returns strings and numbers as text, "" otherwise.
func OptionalString(obj gjson.Result, keys ...string) string {
	value, _ := Field(obj, keys...)
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.Number:
		return value.Raw
	}
	return ""
}

// OptionalBool accepts JSON booleans, "true"/"false" strings and 0/1.
func OptionalBool(obj gjson.Result, keys ...string) bool {
	value, _ := Field(obj, keys...)
	switch value.Type {
	case gjson.True:
		return true
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(value.Str))
		return err == nil && b
	case gjson.Number:
		return value.Num != 0
	}
	return false
}

// OptionalInt accepts JSON numbers and numeric strings.
func OptionalInt(obj gjson.Result, keys ...string) int {
	value, _ := Field(obj, keys...)
	switch value.Type {
	case gjson.Number:
		return int(value.Int())
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(value.Str))
		if err == nil {
			return n
		}
	}
	return 0
}

// OptionalFloat accepts JSON numbers and numeric strings.
func OptionalFloat(obj gjson.Result, keys ...string) (float64, bool) {
	value, _ := Field(obj, keys...)
	switch value.Type {
	case gjson.Number:
		return value.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// Items unwraps a list payload: a bare array, or an object holding the array
// under one of keys, "data" or "items".
func Items(payload gjson.Result, keys ...string) ([]gjson.Result, error) {
	if payload.IsArray() {
		return payload.Array(), nil
	}
	if payload.IsObject() {
		candidates := append(append([]string(nil), keys...), "data", "items")
		for _, key := range candidates {
			nested := lookup(payload, key)
			if nested.IsArray() {
				return nested.Array(), nil
			}
			if nested.IsObject() {
				if inner, err := Items(nested, keys...); err == nil {
					return inner, nil
				}
			}
		}
	}
	return nil, decodeErr("", "expected a list")
}

// Object returns the first present object under keys, or payload itself when it
// is already the object (used for single-entity envelopes).
func Object(payload gjson.Result, keys ...string) (gjson.Result, error) {
	for _, key := range keys {
		if nested := lookup(payload, key); nested.IsObject() {
			return nested, nil
		}
	}
	if payload.IsObject() {
		return payload, nil
	}
	return gjson.Result{}, decodeErr(firstKey(keys), "expected an object")
}

func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
