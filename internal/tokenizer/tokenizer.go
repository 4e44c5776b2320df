// Package tokenizer estimates the token footprint of the finished summary artifact.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/temirov/repoanalyzer/internal/types"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	defaultEncodingName = "cl100k_base"

	errorFallbackEncodingFormat = "initialize fallback tokenizer: %w"
	errorDefaultEncodingFormat  = "initialize default tokenizer: %w"
)

var openAIModelPrefixes = []string{
	"gpt-",
	"o1",
	"o3",
	"text-embedding",
	"davinci",
	"curie",
	"babbage",
	"ada",
	"code-",
}

// NewCounter returns a Counter for the requested model along with the resolved model name.
// Models without a dedicated tiktoken encoding use cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = types.DefaultTokenizerModel
	}
	lowerModel := strings.ToLower(model)

	if isOpenAIModel(lowerModel) {
		encoding, err := tiktoken.EncodingForModel(lowerModel)
		if err == nil && encoding != nil {
			return openAICounter{encoding: encoding, name: lowerModel}, model, nil
		}
		fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
		if fallbackErr != nil {
			return nil, "", fmt.Errorf(errorFallbackEncodingFormat, fallbackErr)
		}
		return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
	}

	encoding, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, "", fmt.Errorf(errorDefaultEncodingFormat, err)
	}
	return openAICounter{encoding: encoding, name: defaultEncodingName}, defaultEncodingName, nil
}

func isOpenAIModel(model string) bool {
	for _, prefix := range openAIModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
