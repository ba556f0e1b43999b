package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const defaultTimeoutForTest = 2 * time.Second

func fixedNow() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

func TestBlobStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get returns the stored blob", func(mt *mtest.T) {
		store := &BlobStore{col: mt.Coll, timeout: defaultTimeoutForTest, now: fixedNow}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.client_blobs", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "thread:u1:u2"},
			{Key: "blob", Value: []byte(`[{"id":"m1"}]`)},
		}))

		blob, ok, err := store.Get("thread:u1:u2")
		require.NoError(mt, err)
		assert.True(mt, ok)
		assert.Equal(mt, `[{"id":"m1"}]`, string(blob))
	})

	mt.Run("missing key is not an error", func(mt *mtest.T) {
		store := &BlobStore{col: mt.Coll, timeout: defaultTimeoutForTest, now: fixedNow}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.client_blobs", mtest.FirstBatch))

		blob, ok, err := store.Get("session:token")
		require.NoError(mt, err)
		assert.False(mt, ok)
		assert.Nil(mt, blob)
	})

	mt.Run("set upserts", func(mt *mtest.T) {
		store := &BlobStore{col: mt.Coll, timeout: defaultTimeoutForTest, now: fixedNow}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "k"}}}},
		))

		require.NoError(mt, store.Set("k", []byte("v")))
	})

	mt.Run("server errors surface", func(mt *mtest.T) {
		store := &BlobStore{col: mt.Coll, timeout: defaultTimeoutForTest, now: fixedNow}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, _, err := store.Get("k")
		assert.Error(mt, err)
	})
}

func TestConnectRequiresURIAndDatabase(t *testing.T) {
	_, _, err := Connect(t.Context(), "", "academy")
	assert.Error(t, err)
	_, _, err = Connect(t.Context(), "mongodb://localhost:27017", "")
	assert.Error(t, err)
}
