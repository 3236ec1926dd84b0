package vendors

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor is a supplier that invoices are matched against.
type Vendor struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Email   string             `bson:"email,omitempty" json:"email"`
	Phone   string             `bson:"phone,omitempty" json:"phone"`
	Website string             `bson:"website,omitempty" json:"website"`

	AddressLine1 string `bson:"address_line1,omitempty" json:"address_line1"`
	AddressLine2 string `bson:"address_line2,omitempty" json:"address_line2"`
	City         string `bson:"city,omitempty" json:"city"`
	State        string `bson:"state,omitempty" json:"state"`
	PostalCode   string `bson:"postal_code,omitempty" json:"postal_code"`
	Country      string `bson:"country,omitempty" json:"country"`

	TaxID   string  `bson:"tax_id,omitempty" json:"tax_id"`
	TaxRate float64 `bson:"tax_rate,omitempty" json:"tax_rate"`

	PaymentTerms           string `bson:"payment_terms,omitempty" json:"payment_terms"`
	PreferredPaymentMethod string `bson:"preferred_payment_method,omitempty" json:"preferred_payment_method"`

	Industry string `bson:"industry,omitempty" json:"industry"`
	Notes    string `bson:"notes,omitempty" json:"notes"`

	IsActive   bool `bson:"is_active" json:"is_active"`
	IsVerified bool `bson:"is_verified" json:"is_verified"`
	RequiresPO bool `bson:"requires_po" json:"requires_po"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullAddress formats the address block. The country is only appended when
// it is not the default US.
func (v *Vendor) FullAddress() string {
	var parts []string

	if v.AddressLine1 != "" {
		parts = append(parts, v.AddressLine1)
	}
	if v.AddressLine2 != "" {
		parts = append(parts, v.AddressLine2)
	}

	var cityStateZip []string
	if v.City != "" {
		cityStateZip = append(cityStateZip, v.City)
	}
	if v.State != "" {
		cityStateZip = append(cityStateZip, v.State)
	}
	if v.PostalCode != "" {
		cityStateZip = append(cityStateZip, v.PostalCode)
	}
	if len(cityStateZip) > 0 {
		parts = append(parts, strings.Join(cityStateZip, ", "))
	}

	if v.Country != "" && v.Country != "US" {
		parts = append(parts, v.Country)
	}

	return strings.Join(parts, "\n")
}

// CreateInput is the body for creating a vendor.
type CreateInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	TaxID        string  `json:"tax_id"`
	TaxRate      float64 `json:"tax_rate"`
	PaymentTerms string  `json:"payment_terms"`
	Industry     string  `json:"industry"`
	RequiresPO   bool    `json:"requires_po"`
}

// ListQuery bounds vendor listing.
type ListQuery struct {
	Skip  int
	Limit int
}
