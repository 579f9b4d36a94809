package domain

import (
	"context"
	"time"
)

// --- Order Entities ---

type Order struct {
	ID                 int64         `json:"id"`
	Number             string        `json:"number"`
	Status             string        `json:"status"` // canonical wire status, see status.go
	DateCreated        time.Time     `json:"dateCreated"`
	CustomerName       string        `json:"customerName"`
	ContactInfo        string        `json:"contactInfo"`
	BillingAddress     string        `json:"billingAddress"`
	ShippingAddress    string        `json:"shippingAddress"`
	PaymentMethod      string        `json:"paymentMethod"`
	PaymentMethodTitle string        `json:"paymentMethodTitle"`
	Total              string        `json:"total"`
	Subtotal           string        `json:"subtotal"`
	TotalTax           string        `json:"totalTax"`
	DiscountTotal      string        `json:"discountTotal"`
	CustomerNote       string        `json:"customerNote"`
	Items              []OrderItem   `json:"items"`
	FeeLines           []FeeLine     `json:"feeLines"`
	TaxLines           []TaxLine     `json:"taxLines"`
	Delivery           *DeliveryInfo `json:"delivery,omitempty"`

	// Client-only flags. The remote system has no notion of these;
	// they are owned by the local side and must survive every refresh.
	IsPrinted bool `json:"isPrinted"`
	IsRead    bool `json:"isRead"`
}

type OrderItem struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"` // unit price at time of purchase
	Total     string `json:"total"`
}

type FeeLine struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Total    string `json:"total"`
	TotalTax string `json:"totalTax"`
}

type TaxLine struct {
	ID          int64   `json:"id"`
	Label       string  `json:"label"`
	RatePercent float64 `json:"ratePercent"`
	TaxTotal    string  `json:"taxTotal"`
}

// DeliveryInfo is structured delivery/fee metadata, mostly scraped from
// free-text order notes. Every field except Method is best-effort.
type DeliveryInfo struct {
	Method     string  `json:"method"` // "delivery" or "pickup"
	Time       *string `json:"time,omitempty"`
	Address    *string `json:"address,omitempty"`
	Fee        *string `json:"fee,omitempty"`
	Tip        *string `json:"tip,omitempty"`
	IsDelivery bool    `json:"isDelivery"`
}

const (
	OrderMethodDelivery = "delivery"
	OrderMethodPickup   = "pickup"
)

// --- Remote API config ---

// APIConfig holds the remote order API credentials.
type APIConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// IsValid reports whether the config is complete enough to attempt a
// network call. Callers must fail fast without touching the network
// when this is false.
func (c APIConfig) IsValid() bool {
	return c.BaseURL != "" && c.ConsumerKey != "" && c.ConsumerSecret != ""
}

// Settings supplies the remote endpoint credentials.
type Settings interface {
	APIConfig(ctx context.Context) (APIConfig, error)
}

// --- Ports ---

// OrderStore is the local persisted copy of the remote order
// collection, keyed by the remote-assigned numeric id.
type OrderStore interface {
	GetAll(ctx context.Context) ([]Order, error)
	GetByStatus(ctx context.Context, status string) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Order, error)
	GetAllIDs(ctx context.Context) ([]int64, error)
	GetUnreadIDs(ctx context.Context) ([]int64, error)

	// UpsertAll writes rows with replace-on-conflict by id. Rows for
	// ids not included in the write set are left alone.
	UpsertAll(ctx context.Context, orders []Order) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteByStatus(ctx context.Context, status string) error

	SetPrinted(ctx context.Context, id int64, printed bool) error
	MarkRead(ctx context.Context, id int64) error
	MarkManyRead(ctx context.Context, ids []int64) error
	MarkAllRead(ctx context.Context) error
}

// OrderAPI is the remote e-commerce order API. Implementations return
// orders already mapped to the domain model with client-only flags
// zeroed; the wire format has no opinion on them.
type OrderAPI interface {
	// ListOrders fetches one page. An empty status means no
	// server-side filter; otherwise status must be canonical.
	ListOrders(ctx context.Context, page, perPage int, status string) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	UpdateOrder(ctx context.Context, id int64, fields map[string]any) (*Order, error)
}
