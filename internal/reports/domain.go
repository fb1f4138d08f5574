// Package reports aggregates ledger and document data into read-only
// summaries. Settlement entries (customer/supplier payments) move money
// between ledgers without being revenue or expense, so document totals come
// from the documents table and flow totals exclude nothing: the two views
// answer different questions.
package reports

import "time"

// Balances is the dashboard headline: current position across all ledgers.
type Balances struct {
	CashInHand  float64 `json:"cash_in_hand"`
	BankBalance float64 `json:"bank_balance"`
	Receivable  float64 `json:"receivable"`
	Payable     float64 `json:"payable"`
}

// PeriodSummary aggregates activity between From and To inclusive.
type PeriodSummary struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Sales     float64   `json:"sales"`
	Purchases float64   `json:"purchases"`
	Expenses  float64   `json:"expenses"`
	Income    float64   `json:"income"`
	CashIn    float64   `json:"cash_in"`
	CashOut   float64   `json:"cash_out"`
	BankIn    float64   `json:"bank_in"`
	BankOut   float64   `json:"bank_out"`
}

// BankBalance is one row of the per-bank summary.
type BankBalance struct {
	BankID  int64   `json:"bank_id"`
	Name    string  `json:"bank_name"`
	Balance float64 `json:"balance"`
}

// GSTSummary reports outward (sales) and inward (purchases) taxable value for
// a filing period. Tax breakdown by rate is not tracked; the totals feed the
// return as-is.
type GSTSummary struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	OutwardTaxable float64   `json:"outward_taxable"`
	InwardTaxable  float64   `json:"inward_taxable"`
}
