package search

import (
	"autofilter/sources/configuration"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
)

// NewOpenAIClient is nil when no token is configured; the extractor
// treats that as "tokenizer only".
func NewOpenAIClient(config *configuration.Config) *openai.Client {
	if config.Search.OpenAIToken == "" {
		return nil
	}
	return openai.NewClient(config.Search.OpenAIToken)
}

var Module = fx.Module("search",
	fx.Provide(
		NewOpenAIClient,
		NewKeywordExtractor,
		NewEngine,
	),
)
