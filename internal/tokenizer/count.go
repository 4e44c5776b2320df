package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

const errorReadArtifactFormat = "read artifact %s: %w"

var errNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a file or byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for the provided data using counter.
// Data that is not valid UTF-8 is reported as not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if !utf8.Valid(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile reads the file at path and estimates its token count.
func CountFile(counter Counter, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return CountResult{}, fmt.Errorf(errorReadArtifactFormat, path, readErr)
	}
	return CountBytes(counter, data)
}
