package trivia

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"trivai/internal/config"
	"trivai/internal/models"
)

// ErrTooShort is returned for a non-forced selection whose chosen text has too few sentences.
var ErrTooShort = errors.New("segment too short")

// ArticleSource resolves an article name to page content. An empty name means a random article.
type ArticleSource interface {
	Resolve(ctx context.Context, name string) (*models.Article, error)
}

// SelectorConfig holds the selection parameters.
type SelectorConfig struct {
	WindowSize   int
	MinSentences int
	MinChars     int
	MaxAttempts  int
	RotateChance float64
	Preferred    []string
	Excluded     []string
}

// SelectorConfigFrom maps the trivia configuration block onto a SelectorConfig.
func SelectorConfigFrom(cfg config.TriviaConfig) SelectorConfig {
	return SelectorConfig{
		WindowSize:   cfg.WindowSize,
		MinSentences: cfg.MinSentences,
		MinChars:     cfg.MinChars,
		MaxAttempts:  cfg.MaxAttempts,
		RotateChance: config.Float64(cfg.RotateChance),
		Preferred:    cfg.PreferredSections,
		Excluded:     cfg.ExcludedSections,
	}
}

// Selector picks a sentence window from an article.
type Selector struct {
	cfg      SelectorConfig
	rand     Rand
	excluded map[string]bool
}

// NewSelector creates a Selector. Zero-valued limits fall back to 10 sentences per window,
// at least 3 sentences, 300 characters for forced segments and 5 random attempts.
// The window is never smaller than MinSentences.
func NewSelector(cfg SelectorConfig, r Rand) *Selector {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 10
	}
	if cfg.MinSentences <= 0 {
		cfg.MinSentences = 3
	}
	if cfg.WindowSize < cfg.MinSentences {
		cfg.WindowSize = cfg.MinSentences
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 300
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	excluded := make(map[string]bool, len(cfg.Excluded))
	for _, name := range cfg.Excluded {
		excluded[strings.ToLower(name)] = true
	}
	return &Selector{cfg: cfg, rand: r, excluded: excluded}
}

// Select extracts a segment from article. A forced selection falls back to the whole article text
// when the chosen section is too short, and fails with models.ErrInsufficient below MinChars.
func (s *Selector) Select(article *models.Article, forced bool) (models.Segment, error) {
	seg := models.Segment{ArticleTitle: article.Title, SourceURL: article.URL}

	text := article.Text
	if sec := s.chooseSection(article.Sections); sec != nil {
		text = sec.FullText()
		seg.SectionTitle = sec.Title
	}

	sentences := splitSentences(cleanText(text))
	if len(sentences) < s.cfg.MinSentences {
		if !forced {
			return seg, fmt.Errorf("%q section %q has %d sentences: %w", article.Title, seg.SectionTitle, len(sentences), ErrTooShort)
		}
		sentences = splitSentences(cleanText(article.Text))
		seg.SectionTitle = ""
	}

	window := s.window(sentences)
	seg.Text = strings.Join(window, " ")
	seg.SentenceCount = len(window)

	if forced && utf8.RuneCountInString(seg.Text) < s.cfg.MinChars {
		return seg, fmt.Errorf("%q has %d characters of text: %w", article.Title, utf8.RuneCountInString(seg.Text), models.ErrInsufficient)
	}
	return seg, nil
}

// SelectRandom resolves random articles until one yields a segment, up to MaxAttempts times.
func (s *Selector) SelectRandom(ctx context.Context, source ArticleSource) (*models.Article, models.Segment, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, models.Segment{}, err
		}
		article, err := source.Resolve(ctx, "")
		if err != nil {
			if retryable(err) {
				lastErr = err
				continue
			}
			return nil, models.Segment{}, err
		}
		seg, err := s.Select(article, false)
		if err != nil {
			if retryable(err) {
				lastErr = err
				continue
			}
			return nil, models.Segment{}, err
		}
		return article, seg, nil
	}
	return nil, models.Segment{}, fmt.Errorf("no usable article after %d attempts (last: %v): %w", s.cfg.MaxAttempts, lastErr, models.ErrInsufficient)
}

func retryable(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, models.ErrInsufficient) || errors.Is(err, models.ErrNotFound)
}

// chooseSection filters, orders and descends into the article's sections. It returns nil when
// no section is usable and the article text should be used instead.
func (s *Selector) chooseSection(sections []*models.Section) *models.Section {
	var candidates []*models.Section
	for _, sec := range sections {
		if s.excluded[strings.ToLower(sec.Title)] || strings.TrimSpace(sec.FullText()) == "" {
			continue
		}
		candidates = append(candidates, sec)
	}
	if len(candidates) == 0 {
		return nil
	}

	var preferred []*models.Section
	for _, name := range s.cfg.Preferred {
		for _, sec := range candidates {
			if strings.EqualFold(sec.Title, name) {
				preferred = append(preferred, sec)
				break
			}
		}
	}
	if len(preferred) > 0 {
		if len(preferred) > 1 && s.rand.Float64() < s.cfg.RotateChance {
			i := s.rand.Intn(len(preferred))
			preferred[0], preferred[i] = preferred[i], preferred[0]
		}
		candidates = preferred
	}

	chosen := candidates[0]
	if len(chosen.Sections) > 0 {
		sub := chosen.Sections[s.rand.Intn(len(chosen.Sections))]
		if strings.TrimSpace(sub.FullText()) != "" {
			return sub
		}
	}
	return chosen
}

// window returns WindowSize contiguous sentences at a uniform offset, or all of them when fewer.
func (s *Selector) window(sentences []string) []string {
	if len(sentences) <= s.cfg.WindowSize {
		return sentences
	}
	offset := s.rand.Intn(len(sentences) - s.cfg.WindowSize + 1)
	return sentences[offset : offset+s.cfg.WindowSize]
}
