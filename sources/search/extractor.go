package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"github.com/sashabaranov/go-openai"
)

const extractorPrompt = `Extract search keywords from the user's request for a media file catalog.
Return ONLY a JSON object of the form {"keywords": ["word1", "word2"]}.
Keep titles, years, quality markers and languages. Drop filler words.`

// KeywordExtractor resolves a natural-language request into catalog
// keywords. With no client configured, or whenever the model call fails
// or returns garbage, it degrades to the local tokenizer so the search
// path never depends on the model being up.
type KeywordExtractor struct {
	client *openai.Client
	config *configuration.Config
}

func NewKeywordExtractor(client *openai.Client, config *configuration.Config) *KeywordExtractor {
	return &KeywordExtractor{client: client, config: config}
}

func (x *KeywordExtractor) timeout() time.Duration {
	if x.config.Search.KeywordTimeout > 0 {
		return x.config.Search.KeywordTimeout
	}
	return 15 * time.Second
}

func (x *KeywordExtractor) model() string {
	if x.config.Search.KeywordModel != "" {
		return x.config.Search.KeywordModel
	}
	return openai.GPT4oMini
}

func (x *KeywordExtractor) Extract(log *tracing.Logger, query string) []string {
	defer tracing.ProfilePoint(log, "Keyword extraction completed", "search.extract", tracing.Query, query)()

	if x.client == nil {
		return Tokenize(query)
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), x.timeout())
	defer cancel()

	response, err := x.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       x.model(),
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		log.W("Keyword extraction failed, falling back to tokenizer", tracing.InnerError, err)
		return Tokenize(query)
	}

	if len(response.Choices) == 0 {
		return Tokenize(query)
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	content := response.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		log.W("Failed to parse extracted keywords, falling back to tokenizer", tracing.InnerError, err, "response", content)
		return Tokenize(query)
	}

	keywords := make([]string, 0, len(parsed.Keywords))
	for _, keyword := range parsed.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		return Tokenize(query)
	}

	log.I("Keywords extracted", "keywords", keywords)
	return keywords
}
