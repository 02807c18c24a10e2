package llm

import "context"

type Context struct {
	Messages []map[string]any
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
}

type Adapter interface {
	Generate(ctx context.Context, input Context) (Response, error)
	Name() string
}
