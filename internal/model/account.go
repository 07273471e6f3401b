package model

import "time"

// Account is a snapshot of the brokerage account.
type Account struct {
	Cash            float64
	Equity          float64
	LastEquity      float64
	AccruedFees     float64
	LongMarketValue float64
	Currency        string
}

// Clock is the brokerage market clock.
type Clock struct {
	Timestamp time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Asset holds the tradability flags the strategy cares about.
type Asset struct {
	Symbol       string
	Tradable     bool
	Fractionable bool
}

// Position is an open holding.
type Position struct {
	Symbol      string
	Qty         float64
	MarketValue float64
}
