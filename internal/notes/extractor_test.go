package notes

import (
	"testing"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestExtractDeliveryInfo(t *testing.T) {
	tests := []struct {
		name        string
		note        string
		hasShipping bool
		want        *domain.DeliveryInfo
	}{
		{
			name:        "no shipping and no keywords",
			note:        "please add extra napkins",
			hasShipping: false,
			want:        nil,
		},
		{
			name:        "chinese tip and fee with currency symbols",
			note:        "小费: ¥15.00 配送费:¥8",
			hasShipping: true,
			want: &domain.DeliveryInfo{
				Method:     domain.OrderMethodDelivery,
				Fee:        strPtr("8"),
				Tip:        strPtr("15.00"),
				IsDelivery: true,
			},
		},
		{
			name:        "english labels",
			note:        "Delivery fee: $3.50, Tip: $2.00, arrive 18:30",
			hasShipping: true,
			want: &domain.DeliveryInfo{
				Method:     domain.OrderMethodDelivery,
				Fee:        strPtr("3.50"),
				Tip:        strPtr("2.00"),
				Time:       strPtr("18:30"),
				IsDelivery: true,
			},
		},
		{
			name:        "delivery without explicit fee defaults to zero",
			note:        "配送到门口，谢谢",
			hasShipping: true,
			want: &domain.DeliveryInfo{
				Method:     domain.OrderMethodDelivery,
				Fee:        strPtr("0.00"),
				IsDelivery: true,
			},
		},
		{
			name:        "pickup keyword without shipping address",
			note:        "自取 下午3点30分",
			hasShipping: false,
			want: &domain.DeliveryInfo{
				Method: domain.OrderMethodPickup,
				Time:   strPtr("下午3点30分"),
			},
		},
		{
			name:        "pickup order has no default fee",
			note:        "pickup at 5:45 PM",
			hasShipping: false,
			want: &domain.DeliveryInfo{
				Method: domain.OrderMethodPickup,
				Time:   strPtr("5:45 PM"),
			},
		},
		{
			name:        "delivery keyword alone decides method",
			note:        "外卖 请尽快",
			hasShipping: false,
			want: &domain.DeliveryInfo{
				Method:     domain.OrderMethodDelivery,
				Fee:        strPtr("0.00"),
				IsDelivery: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDeliveryInfo(tt.note, tt.hasShipping)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if got == nil {
				return
			}
			if got.Method != tt.want.Method {
				t.Errorf("Method = %q, want %q", got.Method, tt.want.Method)
			}
			if got.IsDelivery != tt.want.IsDelivery {
				t.Errorf("IsDelivery = %v, want %v", got.IsDelivery, tt.want.IsDelivery)
			}
			checkOptional(t, "Fee", got.Fee, tt.want.Fee)
			checkOptional(t, "Tip", got.Tip, tt.want.Tip)
			checkOptional(t, "Time", got.Time, tt.want.Time)
		})
	}
}

func checkOptional(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, deref(got), deref(want))
	case *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func TestExtractAmountIgnoresUnlabeledNumbers(t *testing.T) {
	info := ExtractDeliveryInfo("order 12345, apartment 8, deliver please", true)
	if info == nil {
		t.Fatal("expected delivery info")
	}
	if info.Fee == nil || *info.Fee != "0.00" {
		t.Errorf("Fee = %v, want default 0.00 (bare numbers must not match)", deref(info.Fee))
	}
	if info.Tip != nil {
		t.Errorf("Tip = %q, want nil", *info.Tip)
	}
}
