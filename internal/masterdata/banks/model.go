// Package banks manages company bank accounts and their running balances.
package banks

import "time"

// Bank is a company bank account. AccountBalance is maintained by the ledger
// layer; masterdata only seeds it with the opening balance.
type Bank struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	Name           string    `json:"bank_name"`
	AccountNumber  string    `json:"account_number"`
	HolderName     string    `json:"holder_name"`
	IFSC           string    `json:"ifsc_code"`
	AccountBalance float64   `json:"account_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
