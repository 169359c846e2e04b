package extraction

import (
	"context"
)

// MockStep is one scripted LLM exchange.
type MockStep struct {
	Response string
	Err      error
}

// MockClient replays a script of responses, falling back to Default
// once the script is exhausted. It records every prompt it sees.
type MockClient struct {
	Script  []MockStep
	Default string
	Prompts []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if len(m.Script) > 0 {
		step := m.Script[0]
		m.Script = m.Script[1:]
		if step.Err != nil {
			return "", step.Err
		}
		return step.Response, nil
	}
	return m.Default, nil
}
