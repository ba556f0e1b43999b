// Package wire decodes payload values that the backend sends in more than one shape.
package wire

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectIDKey is the extended-JSON key that wraps database object ids.
const ObjectIDKey = "$oid"

// FallbackIDKeys are tried in order when an object carries no ObjectIDKey.
var FallbackIDKeys = []string{"_id", "id", "$id", "userId"}

// maxIDDepth bounds how far fallback keys may nest ({"_id": {"$oid": ...}} is depth 1).
const maxIDDepth = 2

// Identifier is an opaque id once decoded; equality is plain string equality.
type Identifier string

func (id Identifier) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id Identifier) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// ObjectID returns the identifier as a database object id when it is one.
func (id Identifier) ObjectID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// FromObjectID converts a database object id into an Identifier.
func FromObjectID(oid primitive.ObjectID) Identifier {
	return Identifier(oid.Hex())
}

// MarshalJSON writes the canonical shape: a plain string.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts every shape DecodeIdentifier does. JSON null leaves the value untouched.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	value := gjson.ParseBytes(data)
	if value.Type == gjson.Null {
		return nil
	}
	decoded, err := IdentifierFrom(value)
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}

// DecodeIdentifier decodes raw JSON into an Identifier.
func DecodeIdentifier(raw []byte) (Identifier, error) {
	if !gjson.ValidBytes(raw) {
		return "", decodeErr("", "invalid json")
	}
	return IdentifierFrom(gjson.ParseBytes(raw))
}

// IdentifierFrom runs the identifier strategies in order: plain string,
// ObjectIDKey wrapper, then FallbackIDKeys.
func IdentifierFrom(value gjson.Result) (Identifier, error) {
	return identifierAt(value, 0)
}

type idStrategy func(value gjson.Result, depth int) (string, bool)

// identifierChain is assigned in init because idFromFallbackKeys recurses
// through identifierAt.
var identifierChain []idStrategy

func init() {
	identifierChain = []idStrategy{
		idFromString,
		idFromObjectIDWrapper,
		idFromFallbackKeys,
	}
}

func identifierAt(value gjson.Result, depth int) (Identifier, error) {
	for _, strategy := range identifierChain {
		if id, ok := strategy(value, depth); ok {
			return Identifier(id), nil
		}
	}
	return "", decodeErr("", "invalid identifier shape")
}

func idFromString(value gjson.Result, _ int) (string, bool) {
	if value.Type != gjson.String {
		return "", false
	}
	id := strings.TrimSpace(value.Str)
	return id, id != ""
}

func idFromObjectIDWrapper(value gjson.Result, _ int) (string, bool) {
	wrapped := lookup(value, ObjectIDKey)
	if wrapped.Type != gjson.String {
		return "", false
	}
	id := strings.TrimSpace(wrapped.Str)
	return id, id != ""
}

func idFromFallbackKeys(value gjson.Result, depth int) (string, bool) {
	if depth >= maxIDDepth || !value.IsObject() {
		return "", false
	}
	for _, key := range FallbackIDKeys {
		nested := lookup(value, key)
		if !nested.Exists() {
			continue
		}
		if id, err := identifierAt(nested, depth+1); err == nil {
			return string(id), true
		}
	}
	return "", false
}

// lookup finds key in obj by exact match, so keys such as "$oid" never go
// through gjson path syntax.
func lookup(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	if !obj.IsObject() {
		return out
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}
