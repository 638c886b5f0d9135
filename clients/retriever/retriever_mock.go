package retriever

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gridbot/models"
)

// MockRetrieverClient is a mock implementation of clients.RetrieverClient
type MockRetrieverClient struct {
	mock.Mock
}

func (m *MockRetrieverClient) RelevantContext(ctx context.Context, query string, topK int) ([]models.RetrievedSnippet, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RetrievedSnippet), args.Error(1)
}
