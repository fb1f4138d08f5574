// Package parties manages customer and supplier master records.
package parties

import "time"

// PartyType classifies a counterparty.
type PartyType string

const (
	TypeCustomer PartyType = "Customer"
	TypeSupplier PartyType = "Supplier"
)

// Party is a customer or supplier. Documents may reference a party by id or
// carry a free-form name and contact for one-off counterparties.
type Party struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Type      PartyType `json:"type"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Address   string    `json:"address"`
	GSTIN     string    `json:"gst_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
