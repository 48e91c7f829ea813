package grammar

import (
	"context"
	"strings"
	"unicode"

	"github.com/tessera-games/lingoquest/types"
)

// LocalAnalyzer grades utterances offline with a plain word scan over
// known vocabulary. It mirrors the backend's fallback analysis so the
// demo host keeps working without a grammar service.
type LocalAnalyzer struct {
	vocab map[string]bool // known target-language words
}

// NewLocalAnalyzer builds an analyzer over a vocabulary set.
func NewLocalAnalyzer(words []string) *LocalAnalyzer {
	vocab := make(map[string]bool, len(words))
	for _, w := range words {
		vocab[strings.ToLower(w)] = true
	}
	return &LocalAnalyzer{vocab: vocab}
}

// Check tokenizes the utterance and reports every known word once per
// occurrence. Grammar patterns and skill demonstrations need the real
// backend; the local scan leaves them empty.
func (a *LocalAnalyzer) Check(_ context.Context, text string) (types.GrammarCheckResult, error) {
	var result types.GrammarCheckResult
	for _, token := range tokenize(text) {
		if a.vocab[token] {
			result.VocabCorrect = append(result.VocabCorrect, token)
		}
	}
	return result, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
