package domain

import "testing"

func TestToCanonicalStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty stays empty", "", ""},
		{"canonical passes through", "processing", OrderStatusProcessing},
		{"canonical is case-insensitive", "Completed", OrderStatusCompleted},
		{"whitespace trimmed", "  pending  ", OrderStatusPending},
		{"display label resolves", "处理中", OrderStatusProcessing},
		{"pending label", "待付款", OrderStatusPending},
		{"on-hold label", "暂挂", OrderStatusOnHold},
		{"completed label", "已完成", OrderStatusCompleted},
		{"cancelled label", "已取消", OrderStatusCancelled},
		{"refunded label", "已退款", OrderStatusRefunded},
		{"failed label", "失败", OrderStatusFailed},
		{"any passes through", "any", OrderStatusAny},
		{"unknown degrades to any", "shipped", OrderStatusAny},
		{"unknown label degrades to any", "配送中", OrderStatusAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToCanonicalStatus(tt.input); got != tt.want {
				t.Errorf("ToCanonicalStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalizeStatus(t *testing.T) {
	if got := LocalizeStatus(OrderStatusProcessing); got != "处理中" {
		t.Errorf("LocalizeStatus(processing) = %q", got)
	}
	// Unknown values pass through so raw statuses stay visible.
	if got := LocalizeStatus("custom-status"); got != "custom-status" {
		t.Errorf("LocalizeStatus(custom-status) = %q", got)
	}
}

func TestStatusMatchesThreeWay(t *testing.T) {
	tests := []struct {
		name        string
		orderStatus string
		requested   string
		want        bool
	}{
		{"direct equality", "processing", "processing", true},
		{"canonical order vs display request", "processing", "处理中", true},
		{"display order vs canonical request", "处理中", "processing", true},
		{"display vs display", "已完成", "已完成", true},
		{"different statuses", "processing", "completed", false},
		{"different vocabularies different statuses", "processing", "已完成", false},
		{"unknown request matches nothing", "processing", "shipped", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusMatches(tt.orderStatus, tt.requested); got != tt.want {
				t.Errorf("StatusMatches(%q, %q) = %v, want %v", tt.orderStatus, tt.requested, got, tt.want)
			}
		})
	}
}

func TestVocabularyRoundTrip(t *testing.T) {
	for _, s := range OrderStatuses {
		if got := ToCanonicalStatus(LocalizeStatus(s)); got != s {
			t.Errorf("round trip for %q yielded %q", s, got)
		}
	}
}

func TestIsCanonicalStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		if !IsCanonicalStatus(s) {
			t.Errorf("%q should be canonical", s)
		}
	}
	for _, s := range []string{"any", "", "处理中", "shipped"} {
		if IsCanonicalStatus(s) {
			t.Errorf("%q should not be canonical", s)
		}
	}
}
