package trivia

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// englishTokenizer loads the bundled Punkt model once; loading parses a large JSON asset.
var englishTokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// cleanText turns newlines into spaces, drops stray backslashes and collapses whitespace.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, `\`, "")
	return strings.Join(strings.Fields(s), " ")
}

// splitSentences splits cleaned text with the Punkt English model.
// If the model cannot be loaded the whole text is returned as a single sentence.
func splitSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	tokenizer, err := englishTokenizer()
	if err != nil {
		return []string{s}
	}

	var out []string
	for _, sent := range tokenizer.Tokenize(s) {
		if text := strings.TrimSpace(sent.Text); text != "" {
			out = append(out, text)
		}
	}
	return out
}
