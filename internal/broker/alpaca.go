package broker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"SenateLong/internal/model"
)

// Alpaca trading endpoints.
const (
	PaperURL = "https://paper-api.alpaca.markets"
	LiveURL  = "https://api.alpaca.markets"
)

// AlpacaBroker implements Broker on the Alpaca trading API.
type AlpacaBroker struct {
	client *alpaca.Client
	paper  bool
}

// NewAlpacaBroker creates an Alpaca client with optional proxy support.
// baseURL overrides the paper/live endpoint when set.
func NewAlpacaBroker(apiKey, apiSecret string, paper bool, baseURL, proxyURL string) *AlpacaBroker {
	if baseURL == "" {
		baseURL = LiveURL
		if paper {
			baseURL = PaperURL
		}
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:     apiKey,
			APISecret:  apiSecret,
			BaseURL:    baseURL,
			HTTPClient: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		}),
		paper: paper,
	}
}

func (b *AlpacaBroker) Name() string {
	if b.paper {
		return "alpaca-paper"
	}
	return "alpaca-live"
}

func (b *AlpacaBroker) GetAccount(ctx context.Context) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, err := b.client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &model.Account{
		Cash:            acct.Cash.InexactFloat64(),
		Equity:          acct.Equity.InexactFloat64(),
		LastEquity:      acct.LastEquity.InexactFloat64(),
		AccruedFees:     acct.AccruedFees.InexactFloat64(),
		LongMarketValue: acct.LongMarketValue.InexactFloat64(),
		Currency:        acct.Currency,
	}, nil
}

func (b *AlpacaBroker) GetClock(ctx context.Context) (*model.Clock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clock, err := b.client.GetClock()
	if err != nil {
		return nil, fmt.Errorf("get clock: %w", err)
	}
	return &model.Clock{
		Timestamp: clock.Timestamp,
		IsOpen:    clock.IsOpen,
		NextOpen:  clock.NextOpen,
		NextClose: clock.NextClose,
	}, nil
}

func (b *AlpacaBroker) GetAsset(ctx context.Context, symbol string) (*model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asset, err := b.client.GetAsset(symbol)
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", symbol, err)
	}
	return &model.Asset{Symbol: asset.Symbol, Tradable: asset.Tradable, Fractionable: asset.Fractionable}, nil
}

func (b *AlpacaBroker) GetPositions(ctx context.Context) ([]model.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	positions, err := b.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	out := make([]model.Position, len(positions))
	for i, p := range positions {
		out[i] = model.Position{Symbol: p.Symbol, Qty: p.Qty.InexactFloat64()}
		if p.MarketValue != nil {
			out[i].MarketValue = p.MarketValue.InexactFloat64()
		}
	}
	return out, nil
}

// SubmitOrder places a notional market order. The notional is rounded to
// cents, the finest precision Alpaca accepts for fractional orders.
func (b *AlpacaBroker) SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notional := decimal.NewFromFloat(req.Notional).Round(2)
	side := alpaca.Buy
	if req.Side == model.SideSell {
		side = alpaca.Sell
	}
	tif := alpaca.Day
	if req.TimeInForce != "" && req.TimeInForce != model.TimeInForceDay {
		tif = alpaca.TimeInForce(req.TimeInForce)
	}

	order, err := b.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Notional:    &notional,
		Side:        side,
		Type:        alpaca.Market,
		TimeInForce: tif,
	})
	if err != nil {
		return nil, fmt.Errorf("place order %s: %w", req.Symbol, err)
	}

	res := &model.OrderResult{ID: order.ID, Symbol: order.Symbol, Status: order.Status}
	if order.Notional != nil {
		res.Notional = order.Notional.InexactFloat64()
	}
	if order.FilledAvgPrice != nil {
		res.FilledAvgPrice = order.FilledAvgPrice.InexactFloat64()
	}
	return res, nil
}

func (b *AlpacaBroker) CloseAllPositions(ctx context.Context, cancelOrders bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.client.CloseAllPositions(alpaca.CloseAllPositionsRequest{CancelOrders: cancelOrders}); err != nil {
		return fmt.Errorf("close all positions: %w", err)
	}
	return nil
}
