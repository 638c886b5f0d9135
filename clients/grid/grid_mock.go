package grid

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCompletionClient implements the clients.CompletionClient interface for testing
type MockCompletionClient struct {
	mock.Mock
}

// Complete mocks an LLM completion
func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
