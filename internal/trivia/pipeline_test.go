package trivia

import (
	"errors"
	"strings"
	"testing"

	"trivai/internal/models"
	"trivai/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline(src *fakeSource, model *fakeLLM, sampler *fakeSampler) *Pipeline {
	return NewPipeline(src, testSelector(7), NewExtractor(model, nil, 70), sampler, logger.Discard())
}

func berlinArticle() *models.Article {
	return article("Berlin", strings.Join(numberedSentences(12), " "), section("History", numberedSentences(15)))
}

func TestRandomLiveFact(t *testing.T) {
	src := &fakeSource{random: []*models.Article{berlinArticle()}}
	model := &fakeLLM{reply: "Sentence number 9 describes a notable event in the long history of the city."}
	sampler := &fakeSampler{}

	// Offsets 0-5 all contain sentence 9.
	fact, err := testPipeline(src, model, sampler).Random(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.OriginLive, fact.Origin)
	assert.Equal(t, "Berlin", fact.ArticleTitle)
	assert.Zero(t, sampler.calls)
}

func TestRandomFallsBackWhenExtractionFails(t *testing.T) {
	stored := &models.TriviaFact{ArticleTitle: "Paris", Text: "Paris has a replica of the Statue of Liberty.", SourceURL: "https://en.wikipedia.org/wiki/Paris"}
	src := &fakeSource{random: []*models.Article{berlinArticle()}}
	sampler := &fakeSampler{facts: []*models.TriviaFact{stored}}

	for _, model := range []*fakeLLM{{err: errors.New("boom")}, {reply: "Bananas are a yellow fruit rich in potassium and fibre."}} {
		fact, err := testPipeline(src, model, sampler).Random(t.Context(), logger.Discard())
		require.NoError(t, err)
		assert.Equal(t, models.OriginFallback, fact.Origin)
		assert.Equal(t, "Paris", fact.ArticleTitle)
		assert.NotSame(t, stored, fact)
	}
	assert.Empty(t, stored.Origin, "stored fact must not be mutated")
}

func TestRandomFallsBackWhenNoArticleIsUsable(t *testing.T) {
	stored := &models.TriviaFact{ArticleTitle: "Paris", Text: "Paris is old."}
	src := &fakeSource{random: []*models.Article{article("Short", "One. Two.")}}
	sampler := &fakeSampler{facts: []*models.TriviaFact{stored}}

	fact, err := testPipeline(src, &fakeLLM{reply: "unused"}, sampler).Random(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Paris", fact.ArticleTitle)
	assert.Equal(t, 5, src.calls)
}

func TestRandomEmptyStore(t *testing.T) {
	src := &fakeSource{random: []*models.Article{berlinArticle()}}
	_, err := testPipeline(src, &fakeLLM{err: errors.New("boom")}, &fakeSampler{}).Random(t.Context(), nil)
	assert.ErrorIs(t, err, errEmptyStore)
}

func TestForcedNeverTouchesStore(t *testing.T) {
	sampler := &fakeSampler{facts: []*models.TriviaFact{{ArticleTitle: "Paris"}}}
	src := &fakeSource{pages: map[string]*models.Article{"Berlin": berlinArticle()}}
	model := &fakeLLM{reply: "Sentence number 9 describes a notable event in the long history of the city."}
	p := testPipeline(src, model, sampler)

	fact, err := p.Forced(t.Context(), "  Berlin ")
	require.NoError(t, err)
	assert.Equal(t, models.OriginLive, fact.Origin)

	_, err = p.Forced(t.Context(), "Qwxzvy Nonexistent")
	assert.ErrorIs(t, err, models.ErrNotFound)

	model.err = errors.New("boom")
	_, err = p.Forced(t.Context(), "Berlin")
	assert.ErrorIs(t, err, models.ErrExtractionFailed)

	assert.Zero(t, sampler.calls)
}
