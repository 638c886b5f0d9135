package coingecko

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockCoinGeckoClient is a mock implementation of clients.CoinGeckoClient
type MockCoinGeckoClient struct {
	mock.Mock
}

func (m *MockCoinGeckoClient) GetPrice(ctx context.Context, coinID string) (mo.Option[string], error) {
	args := m.Called(ctx, coinID)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockCoinGeckoClient) SearchCoin(ctx context.Context, query string) (mo.Option[string], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}
