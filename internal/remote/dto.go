package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/notes"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

// Wire representation of an order as the remote API reports it. Note
// that the wire format has no notion of the client-only flags; ToDomain
// always leaves them false.

type WireOrder struct {
	ID                 int64          `json:"id"`
	ParentID           int64          `json:"parent_id"`
	Number             string         `json:"number"`
	Status             string         `json:"status"`
	DateCreated        string         `json:"date_created"`
	DateModified       string         `json:"date_modified"`
	Total              string         `json:"total"`
	Customer           *WireCustomer  `json:"customer"`
	Billing            WireAddress    `json:"billing"`
	Shipping           *WireAddress   `json:"shipping"`
	LineItems          []WireLineItem `json:"line_items"`
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	CustomerNote       string         `json:"customer_note"`
	MetaData           []WireMeta     `json:"meta_data"`
	FeeLines           []WireFeeLine  `json:"fee_lines"`
	TaxLines           []WireTaxLine  `json:"tax_lines"`
	TotalTax           string         `json:"total_tax"`
	DiscountTotal      string         `json:"discount_total"`
	Subtotal           string         `json:"subtotal"`
}

type WireCustomer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type WireAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type WireLineItem struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Subtotal  string      `json:"subtotal"`
	Total     string      `json:"total"`
	Price     json.Number `json:"price"` // the API sends this one as a number
}

type WireMeta struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type WireFeeLine struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Total    string `json:"total"`
	TotalTax string `json:"total_tax"`
}

type WireTaxLine struct {
	ID          int64   `json:"id"`
	RateCode    string  `json:"rate_code"`
	Label       string  `json:"label"`
	RatePercent float64 `json:"rate_percent"`
	TaxTotal    string  `json:"tax_total"`
}

const wireDateLayout = "2006-01-02T15:04:05"

// Metadata keys the food-ordering plugin writes. They are appended to
// the note text so the note extractor can pick up delivery times even
// when the customer wrote nothing.
var foodMetaKeys = []string{
	"exwfood_order_method",
	"exwfood_date_deli",
	"exwfood_time_deli",
	"exwfood_timeslot",
}

// ToDomain maps the wire order to the domain model. Field-level
// problems (bad date, malformed note metadata) degrade to sensible
// defaults; they never fail the whole order.
func (w *WireOrder) ToDomain() domain.Order {
	created, err := time.Parse(wireDateLayout, w.DateCreated)
	if err != nil {
		created = time.Now()
	}

	shippingAddr := ""
	if w.Shipping != nil {
		shippingAddr = joinNonEmpty(", ", w.Shipping.Address1, w.Shipping.City, w.Shipping.State, w.Shipping.Postcode)
	}

	note := w.assembleNote()
	delivery := notes.ExtractDeliveryInfo(note, shippingAddr != "")
	w.enrichDelivery(delivery, shippingAddr)

	items := make([]domain.OrderItem, len(w.LineItems))
	for i, li := range w.LineItems {
		items[i] = domain.OrderItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Price:     li.Price.String(),
			Total:     li.Total,
		}
	}

	return domain.Order{
		ID:                 w.ID,
		Number:             w.Number,
		Status:             w.Status,
		DateCreated:        created,
		CustomerName:       w.customerName(),
		ContactInfo:        w.contactInfo(),
		BillingAddress:     joinNonEmpty(", ", w.Billing.Address1, w.Billing.City, w.Billing.State, w.Billing.Postcode),
		ShippingAddress:    shippingAddr,
		PaymentMethod:      w.PaymentMethod,
		PaymentMethodTitle: w.paymentMethodTitle(),
		Total:              w.Total,
		Subtotal:           w.subtotal(),
		TotalTax:           w.totalTax(),
		DiscountTotal:      w.DiscountTotal,
		CustomerNote:       note,
		Items:              items,
		FeeLines:           w.feeLines(delivery),
		TaxLines:           w.taxLines(),
		Delivery:           delivery,
	}
}

func (w *WireOrder) customerName() string {
	name := ""
	if w.Customer != nil {
		name = joinNonEmpty(" ", w.Customer.FirstName, w.Customer.LastName)
	}
	if name == "" {
		name = joinNonEmpty(" ", w.Billing.FirstName, w.Billing.LastName)
	}
	if name == "" {
		name = "游客"
	}
	return name
}

func (w *WireOrder) contactInfo() string {
	if w.Customer != nil {
		if w.Customer.Phone != "" {
			return w.Customer.Phone
		}
		if w.Customer.Email != "" {
			return w.Customer.Email
		}
	}
	return w.Billing.Phone
}

func (w *WireOrder) paymentMethodTitle() string {
	if w.PaymentMethodTitle != "" {
		return w.PaymentMethodTitle
	}
	if w.PaymentMethod != "" {
		return w.PaymentMethod
	}
	return "未指定"
}

// subtotal prefers the wire field and falls back to summing line item
// subtotals, formatted to two decimals.
func (w *WireOrder) subtotal() string {
	if !utils.IsZeroAmount(w.Subtotal) {
		return w.Subtotal
	}
	var sum float64
	for _, li := range w.LineItems {
		sum += utils.ParseAmount(li.Subtotal)
	}
	return utils.FormatAmount(sum)
}

func (w *WireOrder) totalTax() string {
	if !utils.IsZeroAmount(w.TotalTax) {
		return w.TotalTax
	}
	var sum float64
	for _, tl := range w.TaxLines {
		sum += utils.ParseAmount(tl.TaxTotal)
	}
	return utils.FormatAmount(sum)
}

// assembleNote combines the customer note with the food-plugin
// metadata, keeping the "key: value" shape the extractor understands.
func (w *WireOrder) assembleNote() string {
	var b strings.Builder
	b.WriteString(w.CustomerNote)

	for _, key := range foodMetaKeys {
		v := w.metaValue(key)
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(v)
	}
	return b.String()
}

func (w *WireOrder) metaValue(key string) string {
	for _, m := range w.MetaData {
		if m.Key == key && m.Value != nil {
			return fmt.Sprintf("%v", m.Value)
		}
	}
	return ""
}

// enrichDelivery fills delivery fields the note alone could not settle:
// the plugin metadata knows the order method, and fee lines often carry
// the delivery fee and tip as line items rather than note text.
func (w *WireOrder) enrichDelivery(d *domain.DeliveryInfo, shippingAddr string) {
	if d == nil {
		return
	}
	if method := strings.ToLower(w.metaValue("exwfood_order_method")); method == domain.OrderMethodDelivery || method == domain.OrderMethodPickup {
		d.Method = method
		d.IsDelivery = method == domain.OrderMethodDelivery
	}
	if d.IsDelivery && shippingAddr != "" {
		addr := shippingAddr
		d.Address = &addr
	}
	if d.Fee == nil || utils.IsZeroAmount(*d.Fee) {
		if total := findFeeLine(w.FeeLines, deliveryFeeNames); total != "" {
			d.Fee = &total
		}
	}
	if d.Tip == nil || utils.IsZeroAmount(*d.Tip) {
		if total := findFeeLine(w.FeeLines, tipNames); total != "" {
			d.Tip = &total
		}
	}
}

var deliveryFeeNames = []string{"shipping", "delivery", "配送", "外卖", "运费", "送餐"}

var tipNames = []string{"tip", "gratuity", "appreciation", "小费", "感谢费"}

func findFeeLine(lines []WireFeeLine, names []string) string {
	for _, fl := range lines {
		name := strings.ToLower(fl.Name)
		for _, n := range names {
			if strings.Contains(name, n) {
				return fl.Total
			}
		}
	}
	return ""
}

// feeLines maps wire fee lines and backfills synthetic tip/delivery-fee
// lines from the extracted delivery info when the remote sent none, so
// printed receipts always itemize them.
func (w *WireOrder) feeLines(delivery *domain.DeliveryInfo) []domain.FeeLine {
	lines := make([]domain.FeeLine, len(w.FeeLines))
	for i, fl := range w.FeeLines {
		lines[i] = domain.FeeLine{ID: fl.ID, Name: fl.Name, Total: fl.Total, TotalTax: fl.TotalTax}
	}
	if delivery == nil {
		return lines
	}

	if delivery.Tip != nil && !utils.IsZeroAmount(*delivery.Tip) && findFeeLine(w.FeeLines, tipNames) == "" {
		lines = append(lines, domain.FeeLine{ID: -1, Name: "小费", Total: *delivery.Tip, TotalTax: "0.00"})
	}
	if delivery.IsDelivery && delivery.Fee != nil && !utils.IsZeroAmount(*delivery.Fee) && findFeeLine(w.FeeLines, deliveryFeeNames) == "" {
		lines = append(lines, domain.FeeLine{ID: -2, Name: "配送费", Total: *delivery.Fee, TotalTax: "0.00"})
	}
	return lines
}

// taxLines maps wire tax lines, normalizing the common GST/PST labels.
// A non-zero total tax with no tax lines yields one synthetic line so
// the UI always has something to render.
func (w *WireOrder) taxLines() []domain.TaxLine {
	lines := make([]domain.TaxLine, len(w.TaxLines))
	for i, tl := range w.TaxLines {
		label := tl.Label
		switch {
		case strings.Contains(strings.ToUpper(label), "GST"):
			label = "GST"
		case strings.Contains(strings.ToUpper(label), "PST"):
			label = "PST"
		}
		lines[i] = domain.TaxLine{ID: tl.ID, Label: label, RatePercent: tl.RatePercent, TaxTotal: tl.TaxTotal}
	}
	if len(lines) == 0 {
		if tax := w.totalTax(); !utils.IsZeroAmount(tax) {
			lines = append(lines, domain.TaxLine{ID: -1, Label: "税费", RatePercent: 5.0, TaxTotal: tax})
		}
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
