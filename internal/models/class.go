package models

import (
	"time"
)

// Class is a cost-center dimension orthogonal to the account hierarchy.
type Class struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description,omitempty" db:"description"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
