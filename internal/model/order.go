package model

// OrderPlanEntry is one weighted buy derived from a qualifying transaction.
type OrderPlanEntry struct {
	Ticker         string
	WeightedAmount float64
}

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// TimeInForce controls how long an order stays working.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
)

// OrderRequest is a notional market order.
type OrderRequest struct {
	Symbol      string
	Notional    float64
	Side        OrderSide
	TimeInForce TimeInForce
}

// OrderResult is what the broker reports back for an accepted order.
type OrderResult struct {
	ID             string
	Symbol         string
	Notional       float64
	FilledAvgPrice float64 // zero until filled
	Status         string
}
