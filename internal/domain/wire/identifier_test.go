package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeIdentifierShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Identifier
	}{
		{"plain string", `"65a1f0c2e4b0a1b2c3d4e5f6"`, "65a1f0c2e4b0a1b2c3d4e5f6"},
		{"object id wrapper", `{"$oid":"65a1f0c2e4b0a1b2c3d4e5f6"}`, "65a1f0c2e4b0a1b2c3d4e5f6"},
		{"fallback _id", `{"_id":"u2"}`, "u2"},
		{"fallback id", `{"id":"u3","name":"Sam"}`, "u3"},
		{"fallback wrapping wrapper", `{"_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e5f6"}}`, "65a1f0c2e4b0a1b2c3d4e5f6"},
		{"wrapper wins over fallback", `{"id":"other","$oid":"abc"}`, "abc"},
		{"first fallback wins", `{"userId":"later","_id":"first"}`, "first"},
		{"bad fallback skipped", `{"_id":42,"id":"u9"}`, "u9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeIdentifier([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeIdentifierNestedFallbacks(t *testing.T) {
	got, err := DecodeIdentifier([]byte(`{"userId":{"_id":{"$oid":"65a1f0c2e4b0a1b2c3d4e5f6"}}}`))
	require.NoError(t, err)
	assert.Equal(t, Identifier("65a1f0c2e4b0a1b2c3d4e5f6"), got)

	got, err = IdentifierFrom(gjson.Parse(`{"sender":"x","_id":{"id":"u4"}}`))
	require.NoError(t, err)
	assert.Equal(t, Identifier("u4"), got)

	_, err = DecodeIdentifier([]byte(`{"id":{"id":{"id":"too-deep"}}}`))
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestDecodeIdentifierRejectsBadShapes(t *testing.T) {
	for _, raw := range []string{`42`, `true`, `null`, `[]`, `{}`, `""`, `{"$oid":7}`, `{"name":"x"}`, `not json`} {
		_, err := DecodeIdentifier([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrDecode), raw)
		var de *DecodeError
		assert.True(t, errors.As(err, &de), raw)
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	const value = "65A1f0c2e4b0a1b2c3d4e5f6"
	for _, raw := range []string{
		`"` + value + `"`,
		`{"$oid":"` + value + `"}`,
		`{"_id":"` + value + `"}`,
		`{"userId":{"$oid":"` + value + `"}}`,
	} {
		var id Identifier
		require.NoError(t, json.Unmarshal([]byte(raw), &id), raw)
		out, err := json.Marshal(id)
		require.NoError(t, err)
		assert.JSONEq(t, `"`+value+`"`, string(out), raw)
	}
}

func TestIdentifierInsideStruct(t *testing.T) {
	var payload struct {
		Owner Identifier `json:"owner"`
		Peer  Identifier `json:"peer"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"owner":{"$oid":"a1"},"peer":null}`), &payload))
	assert.Equal(t, Identifier("a1"), payload.Owner)
	assert.True(t, payload.Peer.IsZero())

	err := json.Unmarshal([]byte(`{"owner":12}`), &payload)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestIdentifierObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	id := FromObjectID(oid)
	got, ok := id.ObjectID()
	require.True(t, ok)
	assert.Equal(t, oid, got)

	_, ok = Identifier("u1").ObjectID()
	assert.False(t, ok)
}
