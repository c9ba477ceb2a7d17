package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Rp0,00"},
		{"100", "Rp100,00"},
		{"1000", "Rp1.000,00"},
		{"15000.5", "Rp15.000,50"},
		{"1234567", "Rp1.234.567,00"},
		{"1234567.891", "Rp1.234.567,89"},
		{"999.995", "Rp1.000,00"},
		{"-2500", "-Rp2.500,00"},
		{"100000000000.01", "Rp100.000.000.000,01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Fatalf("Format(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatWhole(t *testing.T) {
	got := FormatWhole(decimal.RequireFromString("1234567.4"))
	if got != "Rp1.234.567" {
		t.Fatalf("FormatWhole = %q, want Rp1.234.567", got)
	}
}

func TestFormatNegativeZero(t *testing.T) {
	got := Format(decimal.RequireFromString("-0.001"))
	if got != "Rp0,00" {
		t.Fatalf("Format(-0.001) = %q, want Rp0,00", got)
	}
}
