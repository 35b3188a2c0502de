package browse

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates prompt token counts for logging and metrics.
// Counting is best effort: when no encoding is available for the model the
// chain simply skips token accounting.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter for the given chat model, falling back to
// the cl100k_base encoding for unknown model names.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TokenCounter{encoding: enc}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	if c == nil || c.encoding == nil {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}
