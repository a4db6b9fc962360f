package payment

import (
	"testing"
	"time"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{
			name: "complete spend",
			tx:   Transaction{Date: "2025/05/01", Merchant: "ローソン [楽天ペイ]", Amount: 1000},
			want: true,
		},
		{
			name: "complete top-up",
			tx:   Transaction{Date: "2025/06/10", Merchant: "JAL Pay", Amount: -500},
			want: true,
		},
		{
			name: "zero value record",
			tx:   Transaction{},
			want: false,
		},
		{
			name: "missing date",
			tx:   Transaction{Merchant: "ローソン", Amount: 1000},
			want: false,
		},
		{
			name: "missing merchant",
			tx:   Transaction{Date: "2025/05/01", Amount: 1000},
			want: false,
		},
		{
			name: "zero amount",
			tx:   Transaction{Date: "2025/05/01", Merchant: "ローソン"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseYen(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1,000円", 1000, false},
		{"12,345円", 12345, false},
		{"1,234,567円", 1234567, false},
		{"500円", 500, false},
		{"500", 500, false},
		{" 980円", 980, false},
		{"", 0, true},
		{"円", 0, true},
		{"12a3円", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYen(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYen(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseYen(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025年05月01日 12:00", "2025/05/01"},
		{"2025年05月01日", "2025/05/01"},
		{"2025/05/01 10:30:00", "2025/05/01"},
		{"2025年12月31日　23:59", "2025/12/31"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)
	if got := DateOf(ts); got != "2025/06/10" {
		t.Errorf("DateOf() = %q, want %q", got, "2025/06/10")
	}

	// A JST evening timestamp is still dated by its UTC day.
	jst := time.FixedZone("JST", 9*60*60)
	ts = time.Date(2025, 6, 11, 1, 0, 0, 0, jst)
	if got := DateOf(ts); got != "2025/06/10" {
		t.Errorf("DateOf() = %q, want %q", got, "2025/06/10")
	}
}
