package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// Order is owned by exactly one tenant (UserID). Optional text fields are
// empty strings when absent; the repo maps them to NULL.
type Order struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductID      string    `json:"product_id"`
	Quantity       int       `json:"quantity"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Status         Status    `json:"status"` // lihat status.go
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Draft is the input of Workflow.Create. NotifyNote only goes into the
// WhatsApp message, it is never stored.
type Draft struct {
	ProductID      string
	Quantity       int
	CustomerName   string
	CustomerPhone  string
	Address        string
	Status         Status
	TrackingNumber string
	Note           string
	NotifyNote     string
}

// Patch is the input of Workflow.Update. Nil fields keep the stored value;
// TrackingNumber pointing at "" clears it.
type Patch struct {
	ProductID      *string
	Quantity       *int
	CustomerName   *string
	CustomerPhone  *string
	Address        *string
	Status         *Status
	TrackingNumber *string
	Note           *string
	NotifyNote     string
}

// TrackingView is the public, cross-tenant projection of an order.
type TrackingView struct {
	TrackingNumber string    `json:"tracking_number"`
	CustomerName   string    `json:"customer_name"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	Status         Status    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Notification is one outbound WhatsApp message produced by the workflow.
type Notification struct {
	OrderID        string `json:"order_id"`
	Phone          string `json:"phone"`
	Message        string `json:"message"`
	Status         Status `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}
