package model

import "time"

// TransactionType is the disclosed transaction label.
type TransactionType string

const (
	TxPurchase    TransactionType = "Purchase"
	TxSaleFull    TransactionType = "Sale (Full)"
	TxSalePartial TransactionType = "Sale (Partial)"
	TxExchange    TransactionType = "Exchange"
)

// IsSale reports whether t is one of the sale variants.
func (t TransactionType) IsSale() bool {
	return t == TxSaleFull || t == TxSalePartial || t == "Sale"
}

// FilingIndexEntry is one row of the periodic transaction report index.
type FilingIndexEntry struct {
	FirstName string
	LastName  string
	Link      string // relative link to the report page
	FiledAt   time.Time
}

// FilerName returns "First Last".
func (e FilingIndexEntry) FilerName() string {
	return e.FirstName + " " + e.LastName
}

// TransactionRecord is a single disclosed trade.
// Amount is the upper bound of the disclosed range.
type TransactionRecord struct {
	Filer           string
	TransactionDate time.Time
	FilingDate      time.Time
	Ticker          string
	Type            TransactionType
	Amount          int64
}
