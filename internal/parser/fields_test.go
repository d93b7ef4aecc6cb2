package parser

import (
	"strings"
	"testing"
	"time"
)

func TestFindDate(t *testing.T) {
	now := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)
	today := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "slash separated",
			text: "credited on 12/11/2023",
			want: time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "dash separated",
			text: "credited on 3-4-2023",
			want: time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "two digit year",
			text: "credited on 01/02/24",
			want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "no date falls back to processing day",
			text: "ETB 100.00 credited",
			want: today,
		},
		{
			name: "out of range month falls back",
			text: "credited on 25/13/2023",
			want: today,
		},
		{
			name: "out of range day falls back",
			text: "credited on 32/01/2023",
			want: today,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findDate(tt.text, now)
			if !got.Equal(tt.want) {
				t.Errorf("findDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"plain", "150.50", 150.50, true},
		{"thousands separators", "1,234,567.89", 1234567.89, true},
		{"integer", "500", 500, true},
		{"zero rejected", "0.00", 0, false},
		{"garbage rejected", "abc", 0, false},
		{"empty rejected", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAmount(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSynthesizeReference(t *testing.T) {
	now := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)

	first := synthesizeReference(providerRefPrefix, now)
	second := synthesizeReference(providerRefPrefix, now)

	wantPrefix := "ET20231215103000-"
	if !strings.HasPrefix(first, wantPrefix) {
		t.Errorf("reference = %q, want prefix %q", first, wantPrefix)
	}
	// Same-second synthesis must still never collide.
	if first == second {
		t.Errorf("expected distinct references, got %q twice", first)
	}
}

func TestFindBalance(t *testing.T) {
	tests := []struct {
		want *float64
		name string
		text string
	}{
		{
			name: "labeled balance",
			text: "Balance: ETB 25,000.00",
			want: floatPtr(25000.00),
		},
		{
			name: "abbreviated label",
			text: "Avail Bal: ETB 7,500.00",
			want: floatPtr(7500.00),
		},
		{
			name: "lowercase label",
			text: "New balance: ETB 900.00",
			want: floatPtr(900.00),
		},
		{
			name: "no balance",
			text: "ETB 100.00 credited",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findBalance(tt.text)
			switch {
			case tt.want == nil:
				if got != nil {
					t.Errorf("findBalance() = %v, want nil", *got)
				}
			case got == nil:
				t.Errorf("findBalance() = nil, want %v", *tt.want)
			case *got != *tt.want:
				t.Errorf("findBalance() = %v, want %v", *got, *tt.want)
			}
		})
	}
}
