package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

var errMissingEncoding = errors.New("tiktoken encoding not initialized")

// openAICounter counts tokens with a tiktoken BPE encoding.
type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

// CountString encodes input with special tokens treated as plain text.
func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errMissingEncoding
	}
	return len(counter.encoding.EncodeOrdinary(input)), nil
}
