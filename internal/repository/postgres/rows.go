package postgres

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

// orderRow is the persisted shape of an order. Line items, fee/tax
// lines and delivery info are stored as JSONB; everything else maps to
// plain columns. rowFromDomain and rowToDomain are pure and round-trip
// every persisted field.
type orderRow struct {
	ID                 int64
	Number             string
	Status             string
	DateCreated        time.Time
	CustomerName       string
	ContactInfo        string
	BillingAddress     string
	ShippingAddress    string
	PaymentMethod      string
	PaymentMethodTitle string
	Total              string
	Subtotal           string
	TotalTax           string
	DiscountTotal      string
	CustomerNote       string
	Items              []byte
	FeeLines           []byte
	TaxLines           []byte
	Delivery           []byte // nil when the order has no delivery info
	IsPrinted          bool
	IsRead             bool
}

func rowFromDomain(o domain.Order) (orderRow, error) {
	items, err := json.Marshal(orFallback(o.Items))
	if err != nil {
		return orderRow{}, err
	}
	feeLines, err := json.Marshal(orFallback(o.FeeLines))
	if err != nil {
		return orderRow{}, err
	}
	taxLines, err := json.Marshal(orFallback(o.TaxLines))
	if err != nil {
		return orderRow{}, err
	}
	var delivery []byte
	if o.Delivery != nil {
		delivery, err = json.Marshal(o.Delivery)
		if err != nil {
			return orderRow{}, err
		}
	}

	return orderRow{
		ID:                 o.ID,
		Number:             o.Number,
		Status:             o.Status,
		DateCreated:        o.DateCreated,
		CustomerName:       o.CustomerName,
		ContactInfo:        o.ContactInfo,
		BillingAddress:     o.BillingAddress,
		ShippingAddress:    o.ShippingAddress,
		PaymentMethod:      o.PaymentMethod,
		PaymentMethodTitle: o.PaymentMethodTitle,
		Total:              o.Total,
		Subtotal:           o.Subtotal,
		TotalTax:           o.TotalTax,
		DiscountTotal:      o.DiscountTotal,
		CustomerNote:       o.CustomerNote,
		Items:              items,
		FeeLines:           feeLines,
		TaxLines:           taxLines,
		Delivery:           delivery,
		IsPrinted:          o.IsPrinted,
		IsRead:             o.IsRead,
	}, nil
}

func rowToDomain(r orderRow) domain.Order {
	o := domain.Order{
		ID:                 r.ID,
		Number:             r.Number,
		Status:             r.Status,
		DateCreated:        r.DateCreated,
		CustomerName:       r.CustomerName,
		ContactInfo:        r.ContactInfo,
		BillingAddress:     r.BillingAddress,
		ShippingAddress:    r.ShippingAddress,
		PaymentMethod:      r.PaymentMethod,
		PaymentMethodTitle: r.PaymentMethodTitle,
		Total:              r.Total,
		TotalTax:           r.TotalTax,
		DiscountTotal:      r.DiscountTotal,
		CustomerNote:       r.CustomerNote,
		IsPrinted:          r.IsPrinted,
		IsRead:             r.IsRead,
	}

	// JSONB payloads written by rowFromDomain always decode; a decode
	// failure means a hand-edited row, so degrade to empty rather than
	// failing the whole order.
	if err := json.Unmarshal(orRawFallback(r.Items), &o.Items); err != nil {
		logger.Error().Err(err).Int64("order_id", r.ID).Msg("corrupt items payload in order row")
		o.Items = []domain.OrderItem{}
	}
	if err := json.Unmarshal(orRawFallback(r.FeeLines), &o.FeeLines); err != nil {
		logger.Error().Err(err).Int64("order_id", r.ID).Msg("corrupt fee lines payload in order row")
		o.FeeLines = []domain.FeeLine{}
	}
	if err := json.Unmarshal(orRawFallback(r.TaxLines), &o.TaxLines); err != nil {
		logger.Error().Err(err).Int64("order_id", r.ID).Msg("corrupt tax lines payload in order row")
		o.TaxLines = []domain.TaxLine{}
	}
	if len(r.Delivery) > 0 {
		var d domain.DeliveryInfo
		if err := json.Unmarshal(r.Delivery, &d); err != nil {
			logger.Error().Err(err).Int64("order_id", r.ID).Msg("corrupt delivery payload in order row")
		} else {
			o.Delivery = &d
		}
	}

	o.Subtotal = deriveSubtotal(r.Subtotal, o.Items, r.Total, r.TotalTax)
	return o
}

// deriveSubtotal applies the subtotal policy in order, stopping at the
// first usable source: the persisted field, the item sum, total minus
// tax, then total. Computed values carry exactly two decimals.
func deriveSubtotal(persisted string, items []domain.OrderItem, total, tax string) string {
	if persisted != "" {
		return persisted
	}
	if len(items) > 0 {
		var sum float64
		for _, it := range items {
			sum += utils.ParseAmount(it.Price) * float64(it.Quantity)
		}
		return utils.FormatAmount(sum)
	}
	if total != "" {
		return utils.FormatAmount(utils.ParseAmount(total) - utils.ParseAmount(tax))
	}
	return total
}

// orFallback keeps nil slices out of the JSONB columns so empty and
// missing stay distinguishable from scan errors.
func orFallback[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orRawFallback(b []byte) []byte {
	if len(b) == 0 {
		return []byte("[]")
	}
	return b
}
