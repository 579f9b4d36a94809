package utils

import (
	"reflect"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.50", 12.5},
		{" 8 ", 8},
		{"0.00", 0},
		{"", 0},
		{"abc", 0},
		{"-3.25", -3.25},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(8); got != "8.00" {
		t.Errorf("FormatAmount(8) = %q", got)
	}
	if got := FormatAmount(12.345); got != "12.35" {
		t.Errorf("FormatAmount(12.345) = %q", got)
	}
}

func TestIsZeroAmount(t *testing.T) {
	for _, s := range []string{"", "0", "0.0", "0.00", " 0.00 "} {
		if !IsZeroAmount(s) {
			t.Errorf("IsZeroAmount(%q) should be true", s)
		}
	}
	for _, s := range []string{"0.01", "5", "-1"} {
		if IsZeroAmount(s) {
			t.Errorf("IsZeroAmount(%q) should be false", s)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("  Alice   WONG 778 ")
	want := []string{"alice", "wong", "778"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if len(Tokenize("")) != 0 {
		t.Error("empty query should yield no tokens")
	}
}
