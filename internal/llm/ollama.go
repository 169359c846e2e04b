package llm

import (
	"context"
	"fmt"

	"github.com/XiaoConstantine/dspy-go/pkg/llms"
)

type OllamaClient struct {
	llm *llms.OllamaLLM
}

func NewOllamaClient(modelName string, baseURL string) (*OllamaClient, error) {
	ollamaLLM, err := llms.NewOllamaLLM(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama llm: %w", err)
	}

	return &OllamaClient{llm: ollamaLLM}, nil
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}
