package store

import (
	"testing"

	"trivai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNamespace = "trivai.trivia"

func newMockStore(mt *mtest.T) *MongoFactStore {
	mt.AddMockResponses(mtest.CreateSuccessResponse())
	s, err := NewMongoFactStore(mt.Context(), mt.DB, "trivia")
	require.NoError(mt, err)
	return s
}

func berlinDoc() bson.D {
	return bson.D{
		{Key: "article_name", Value: "Berlin"},
		{Key: "result", Value: "Berlin became the capital of Prussia in 1701."},
		{Key: "wiki_url", Value: "https://en.wikipedia.org/wiki/Berlin"},
	}
}

func TestMongoFactStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	fact := &models.TriviaFact{ArticleTitle: "Berlin", Text: "Berlin became the capital of Prussia in 1701.", SourceURL: "https://en.wikipedia.org/wiki/Berlin"}

	mt.Run("creates unique title index", func(mt *mtest.T) {
		newMockStore(mt)
		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "article_name_unique", cmd.Lookup("indexes", "0", "name").StringValue())
		assert.True(mt, cmd.Lookup("indexes", "0", "unique").Boolean())
	})

	mt.Run("insert new fact", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
		))
		mt.ClearEvents()

		res, err := s.InsertIfAbsent(mt.Context(), fact)
		require.NoError(mt, err)
		assert.Equal(mt, Inserted, res)

		cmd := mt.GetStartedEvent().Command
		assert.True(mt, cmd.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, "Berlin", cmd.Lookup("updates", "0", "q", "article_name").StringValue())
		assert.Equal(mt, "Berlin", cmd.Lookup("updates", "0", "u", "$setOnInsert", "article_name").StringValue())
	})

	mt.Run("insert existing fact", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		res, err := s.InsertIfAbsent(mt.Context(), fact)
		require.NoError(mt, err)
		assert.Equal(mt, AlreadyPresent, res)
	})

	mt.Run("duplicate key race counts as present", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		res, err := s.InsertIfAbsent(mt.Context(), fact)
		require.NoError(mt, err)
		assert.Equal(mt, AlreadyPresent, res)
	})

	mt.Run("insert failure wraps driver error", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := s.InsertIfAbsent(mt.Context(), fact)
		require.Error(mt, err)
		assert.ErrorIs(mt, err, models.ErrStoreUnavailable)
		assert.Contains(mt, err.Error(), "not authorized")
	})

	mt.Run("sample empty collection", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		_, err := s.SampleRandom(mt.Context())
		assert.ErrorIs(mt, err, ErrEmpty)
	})

	mt.Run("sample returns stored fact", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, berlinDoc()))
		mt.ClearEvents()

		got, err := s.SampleRandom(mt.Context())
		require.NoError(mt, err)
		assert.Equal(mt, "Berlin", got.ArticleTitle)
		assert.Equal(mt, models.OriginFallback, got.Origin)

		stage := mt.GetStartedEvent().Command.Lookup("pipeline", "0", "$sample", "size")
		size, ok := stage.AsInt64OK()
		require.True(mt, ok)
		assert.EqualValues(mt, 1, size)
	})

	mt.Run("find by title", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, berlinDoc()),
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch),
		)

		got, err := s.FindByTitle(mt.Context(), "Berlin")
		require.NoError(mt, err)
		assert.Equal(mt, "https://en.wikipedia.org/wiki/Berlin", got.SourceURL)

		_, err = s.FindByTitle(mt.Context(), "Atlantis")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("count", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		n, err := s.Count(mt.Context())
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})
}
