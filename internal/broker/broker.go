package broker

import (
	"context"

	"SenateLong/internal/model"
)

// Broker is the brokerage as used by the rebalance scheduler.
type Broker interface {
	GetAccount(ctx context.Context) (*model.Account, error)
	GetClock(ctx context.Context) (*model.Clock, error)
	GetAsset(ctx context.Context, symbol string) (*model.Asset, error)
	GetPositions(ctx context.Context) ([]model.Position, error)
	SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error)
	// CloseAllPositions liquidates every holding, cancelling open orders first when asked.
	CloseAllPositions(ctx context.Context, cancelOrders bool) error
	Name() string
}
