package remote

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
)

func TestToDomainNeverSetsClientFlags(t *testing.T) {
	w := WireOrder{ID: 7, Number: "7", Status: domain.OrderStatusProcessing, DateCreated: "2024-03-01T12:00:00"}
	o := w.ToDomain()
	if o.IsPrinted || o.IsRead {
		t.Fatalf("wire mapping set client-only flags: printed=%v read=%v", o.IsPrinted, o.IsRead)
	}
}

func TestCustomerNameFallbacks(t *testing.T) {
	tests := []struct {
		name string
		wire WireOrder
		want string
	}{
		{
			name: "customer name preferred",
			wire: WireOrder{
				Customer: &WireCustomer{FirstName: "小", LastName: "王"},
				Billing:  WireAddress{FirstName: "Billing", LastName: "Person"},
			},
			want: "小 王",
		},
		{
			name: "billing fallback",
			wire: WireOrder{Billing: WireAddress{FirstName: "Jane", LastName: "Doe"}},
			want: "Jane Doe",
		},
		{
			name: "guest default",
			wire: WireOrder{},
			want: "游客",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.wire.ToDomain().CustomerName; got != tt.want {
				t.Errorf("CustomerName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubtotalDerivedFromLineItems(t *testing.T) {
	w := WireOrder{
		Subtotal: "0.00",
		LineItems: []WireLineItem{
			{Name: "noodles", Quantity: 2, Subtotal: "12.50", Total: "12.50", Price: json.Number("6.25")},
			{Name: "tea", Quantity: 1, Subtotal: "3.00", Total: "3.00", Price: json.Number("3")},
		},
	}
	if got := w.ToDomain().Subtotal; got != "15.50" {
		t.Errorf("Subtotal = %q, want %q", got, "15.50")
	}
}

func TestSubtotalFromWireFieldWhenPresent(t *testing.T) {
	w := WireOrder{Subtotal: "99.90"}
	if got := w.ToDomain().Subtotal; got != "99.90" {
		t.Errorf("Subtotal = %q, want %q", got, "99.90")
	}
}

func TestSyntheticTaxLine(t *testing.T) {
	w := WireOrder{TotalTax: "4.20"}
	o := w.ToDomain()
	if len(o.TaxLines) != 1 {
		t.Fatalf("TaxLines count = %d, want 1", len(o.TaxLines))
	}
	if o.TaxLines[0].TaxTotal != "4.20" || o.TaxLines[0].ID != -1 {
		t.Errorf("synthetic tax line = %+v", o.TaxLines[0])
	}
}

func TestTaxLabelNormalization(t *testing.T) {
	w := WireOrder{TaxLines: []WireTaxLine{
		{ID: 1, Label: "BC GST 5%", RatePercent: 5, TaxTotal: "1.00"},
		{ID: 2, Label: "pst-bc", RatePercent: 7, TaxTotal: "1.40"},
	}}
	o := w.ToDomain()
	if o.TaxLines[0].Label != "GST" || o.TaxLines[1].Label != "PST" {
		t.Errorf("labels = %q, %q; want GST, PST", o.TaxLines[0].Label, o.TaxLines[1].Label)
	}
}

func TestDeliveryFromNoteWithShippingAddress(t *testing.T) {
	w := WireOrder{
		CustomerNote: "小费: ¥15.00 配送费:¥8",
		Shipping:     &WireAddress{Address1: "88 Main St", City: "Vancouver"},
	}
	o := w.ToDomain()
	if o.Delivery == nil {
		t.Fatal("expected delivery info")
	}
	if o.Delivery.Method != domain.OrderMethodDelivery {
		t.Errorf("Method = %q, want delivery", o.Delivery.Method)
	}
	if o.Delivery.Fee == nil || *o.Delivery.Fee != "8" {
		t.Errorf("Fee = %v, want 8", o.Delivery.Fee)
	}
	if o.Delivery.Tip == nil || *o.Delivery.Tip != "15.00" {
		t.Errorf("Tip = %v, want 15.00", o.Delivery.Tip)
	}
	if o.Delivery.Address == nil || *o.Delivery.Address != "88 Main St, Vancouver" {
		t.Errorf("Address = %v", o.Delivery.Address)
	}
}

func TestDeliveryFeeBackfilledFromFeeLines(t *testing.T) {
	w := WireOrder{
		Shipping: &WireAddress{Address1: "1 Pine Rd"},
		FeeLines: []WireFeeLine{{ID: 10, Name: "Shipping fee", Total: "5.00", TotalTax: "0.00"}},
	}
	o := w.ToDomain()
	if o.Delivery == nil || o.Delivery.Fee == nil || *o.Delivery.Fee != "5.00" {
		t.Fatalf("Delivery = %+v, want fee 5.00 from fee line", o.Delivery)
	}
	// The real fee line must not be duplicated by a synthetic one.
	if len(o.FeeLines) != 1 {
		t.Errorf("FeeLines count = %d, want 1", len(o.FeeLines))
	}
}

func TestSyntheticFeeLinesFromNote(t *testing.T) {
	w := WireOrder{
		CustomerNote: "Tip: $2.00 delivery fee: $6.00",
		Shipping:     &WireAddress{Address1: "9 Oak Ave"},
	}
	o := w.ToDomain()
	var tip, fee bool
	for _, fl := range o.FeeLines {
		switch fl.Name {
		case "小费":
			tip = fl.Total == "2.00"
		case "配送费":
			fee = fl.Total == "6.00"
		}
	}
	if !tip || !fee {
		t.Errorf("FeeLines = %+v, want synthetic tip and delivery fee lines", o.FeeLines)
	}
}

func TestMetadataOverridesMethodAndFeedsNote(t *testing.T) {
	w := WireOrder{
		CustomerNote: "",
		Shipping:     &WireAddress{Address1: "14 Elm St"},
		MetaData: []WireMeta{
			{Key: "exwfood_order_method", Value: "pickup"},
			{Key: "exwfood_time_deli", Value: "17:45"},
		},
	}
	o := w.ToDomain()
	if o.Delivery == nil {
		t.Fatal("expected delivery info")
	}
	if o.Delivery.Method != domain.OrderMethodPickup || o.Delivery.IsDelivery {
		t.Errorf("Method = %q IsDelivery = %v, want pickup/false", o.Delivery.Method, o.Delivery.IsDelivery)
	}
	if o.Delivery.Time == nil || *o.Delivery.Time != "17:45" {
		t.Errorf("Time = %v, want 17:45", o.Delivery.Time)
	}
}

func TestBadDateDoesNotFailMapping(t *testing.T) {
	w := WireOrder{ID: 3, DateCreated: "not-a-date", Status: domain.OrderStatusPending}
	o := w.ToDomain()
	if o.ID != 3 || o.DateCreated.IsZero() {
		t.Errorf("mapping degraded badly: %+v", o)
	}
}
