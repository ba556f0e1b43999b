package stadium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/domain/wire"
)

func TestDecodeStadiumsCoordinateShapes(t *testing.T) {
	raw := []byte(`{"data":[
		{"_id":{"$oid":"s1"},"name":"north field","latitude":"41.38","longitude":"2.17","capacity":"1200"},
		{"id":"s2","name":"Arena","location":{"lat":40.4,"lng":-3.7}},
		{"id":"s3","name":"Camp B","location":{"type":"Point","coordinates":[-0.37,39.47]}},
		{"id":"s4","name":"Annex"}
	]}`)
	list, err := DecodeStadiums(raw)
	require.NoError(t, err)
	require.Len(t, list, 4)

	names := []string{list[0].Name, list[1].Name, list[2].Name, list[3].Name}
	assert.Equal(t, []string{"Annex", "Arena", "Camp B", "north field"}, names)

	assert.False(t, list[0].Location.Valid)
	assert.InDelta(t, 40.4, list[1].Location.Latitude, 1e-9)
	assert.InDelta(t, 39.47, list[2].Location.Latitude, 1e-9)
	assert.InDelta(t, -0.37, list[2].Location.Longitude, 1e-9)
	assert.Equal(t, wire.Identifier("s1"), list[3].ID)
	assert.Equal(t, 1200, list[3].Capacity)
	assert.InDelta(t, 2.17, list[3].Location.Longitude, 1e-9)
}

func TestDecodeStadiumsRequiresName(t *testing.T) {
	_, err := DecodeStadiums([]byte(`[{"id":"s1"}]`))
	assert.ErrorIs(t, err, wire.ErrDecode)
}
