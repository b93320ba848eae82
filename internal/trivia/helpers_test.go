package trivia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trivai/internal/models"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	f.prompts = append(f.prompts, req.Content[0].Parts[0].Text)
	if f.err != nil {
		return nil, f.err
	}
	return &models.GenerateContentResponse{
		Content: []models.Content{{Role: models.SpeakerModel, Parts: []*models.Part{{Text: f.reply}}}},
	}, nil
}

// fakeSource serves articles by title; the random queue is consumed in order and then repeats its last entry.
type fakeSource struct {
	pages  map[string]*models.Article
	random []*models.Article
	calls  int
}

func (f *fakeSource) Resolve(_ context.Context, name string) (*models.Article, error) {
	f.calls++
	if name == "" {
		if len(f.random) == 0 {
			return nil, models.ErrNotFound
		}
		a := f.random[0]
		if len(f.random) > 1 {
			f.random = f.random[1:]
		}
		return a, nil
	}
	if a, ok := f.pages[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%q: %w", name, models.ErrNotFound)
}

var errEmptyStore = errors.New("store empty")

type fakeSampler struct {
	facts []*models.TriviaFact
	calls int
}

func (f *fakeSampler) SampleRandom(context.Context) (*models.TriviaFact, error) {
	f.calls++
	if len(f.facts) == 0 {
		return nil, errEmptyStore
	}
	return f.facts[0], nil
}

type denyLimiter struct{}

func (denyLimiter) Allow() bool { return false }

func numberedSentences(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Sentence number %d describes a notable event in the long history of the city.", i+1)
	}
	return out
}

func article(title string, text string, sections ...*models.Section) *models.Article {
	return &models.Article{
		Title:    title,
		Text:     text,
		URL:      "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_"),
		Sections: sections,
	}
}

func section(title string, sentences []string, subs ...*models.Section) *models.Section {
	return &models.Section{Title: title, Level: 2, Text: strings.Join(sentences, "\n"), Sections: subs}
}
