// Package grammar defines the grammar-check collaborator boundary: an
// interface producing usage evidence for one utterance, an HTTP client
// for the grading backend, and a local word-scan fallback.
package grammar

import (
	"context"

	"github.com/tessera-games/lingoquest/types"
)

// Checker grades one utterance and reports the vocabulary, grammar
// patterns, and skills it demonstrates. Implementations must return a
// zero result with an error on failure; the engine treats both as a
// no-op on progression state.
type Checker interface {
	Check(ctx context.Context, text string) (types.GrammarCheckResult, error)
}
