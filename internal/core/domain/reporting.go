package domain

import "time"

// CurrencyTotals is the approved inflow, outflow and balance of one currency, in minor units.
type CurrencyTotals struct {
	Currency Currency `json:"currency"`
	InSum    int64    `json:"inSum"`
	OutSum   int64    `json:"outSum"`
}

// Balance is the approved net position.
func (t CurrencyTotals) Balance() int64 {
	return t.InSum - t.OutSum
}

// DailyFlow is the approved inflow and outflow of one currency on one value date.
type DailyFlow struct {
	Date     time.Time `json:"date"`
	Currency Currency  `json:"currency"`
	InSum    int64     `json:"inSum"`
	OutSum   int64     `json:"outSum"`
}

// BeneficiaryTotal aggregates approved withdrawals paid to one beneficiary.
type BeneficiaryTotal struct {
	Name        string   `json:"name"`
	Currency    Currency `json:"currency"`
	AmountMinor int64    `json:"amountMinor"`
}

// Reconciliation compares the stored balance with one rebuilt from history.
type Reconciliation struct {
	Currency        Currency `json:"currency"`
	StoredBalance   int64    `json:"storedBalance"`
	ReplayedBalance int64    `json:"replayedBalance"`
	EntriesReplayed int      `json:"entriesReplayed"`
}

// Consistent reports whether both balances agree.
func (r Reconciliation) Consistent() bool {
	return r.StoredBalance == r.ReplayedBalance
}
