package models

import (
	"time"
)

// Payee is a vendor or customer referenced optionally by entries.
type Payee struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address1       string    `json:"address1,omitempty" db:"address1"`
	Address2       string    `json:"address2,omitempty" db:"address2"`
	City           string    `json:"city,omitempty" db:"city"`
	State          string    `json:"state,omitempty" db:"state"`
	Zip            string    `json:"zip,omitempty" db:"zip"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Email          string    `json:"email,omitempty" db:"email"`
	IsW9Vendor     bool      `json:"isW9Vendor" db:"is_w9_vendor"`
	W9Attachment   *string   `json:"w9Attachment,omitempty" db:"w9_attachment"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
