package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is a row of the invoices table. Amount is stored in minor units (cents).
type Invoice struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerID string         `gorm:"type:uuid;index;not null" json:"customer_id"`
	Amount     int64          `gorm:"not null" json:"amount"`
	Status     string         `gorm:"type:varchar(255);index;not null" json:"status"`
	Date       datatypes.Date `gorm:"not null" json:"date"`
}

// DateString returns the creation date as YYYY-MM-DD.
func (i Invoice) DateString() string {
	return time.Time(i.Date).Format(time.DateOnly)
}

// InvoiceRow is an invoice joined with the customer it was issued to, as shown in the listing.
type InvoiceRow struct {
	ID           uuid.UUID      `json:"id"`
	CustomerID   string         `json:"customer_id"`
	Amount       int64          `json:"amount"`
	Status       string         `json:"status"`
	Date         datatypes.Date `json:"date"`
	CustomerName string         `json:"name"`
	Email        string         `json:"email"`
	ImageURL     string         `json:"image_url"`
}
