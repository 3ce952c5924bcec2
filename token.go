package cratedocs

import "context"

// TokenCounter counts tokens in text for a specific encoding.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
