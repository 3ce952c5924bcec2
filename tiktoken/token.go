// Package tiktoken counts tokens with OpenAI's BPE encodings.
package tiktoken

import (
	"context"

	"github.com/fwojciec/cratedocs"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the encoding used by OpenAI embedding models.
const DefaultEncoding = "cl100k_base"

var _ cratedocs.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens using a tiktoken encoding.
// It is safe for concurrent use.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter creates a new TokenCounter for the named encoding.
// The encoding's ranks are downloaded on first use and cached under
// TIKTOKEN_CACHE_DIR when it is set.
func NewTokenCounter(encoding string) (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, cratedocs.Errorf(cratedocs.ECONFIG, "failed to load tokenizer %q: %v", encoding, err)
	}
	return &TokenCounter{enc: enc}, nil
}

// CountTokens counts the number of tokens in the given text. Special tokens
// appearing in the text are counted as single tokens rather than rejected.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(tc.enc.Encode(text, []string{"all"}, nil)), nil
}
