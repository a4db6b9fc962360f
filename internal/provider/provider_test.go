package provider

import (
	"reflect"
	"testing"
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

var received = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestJALPayParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want payment.Transaction
	}{
		{
			name: "usage notification",
			body: "ご利用ありがとうございます。\n" +
				"ご利用金額：1,000円\n" +
				"ご利用日時：2025年05月01日 12:00\n",
			want: payment.Transaction{Date: "2025/05/01", Merchant: " [JAL Pay]", Amount: 1000},
		},
		{
			name: "top-up dates from receipt timestamp and negates amount",
			body: "チャージ金額：500円\n",
			want: payment.Transaction{Date: "2025/06/10", Merchant: "JAL Pay", Amount: -500},
		},
		{
			name: "thousands separators stripped",
			body: "ご利用金額：12,345円\nご利用日時：2025年05月01日 12:00\n",
			want: payment.Transaction{Date: "2025/05/01", Merchant: " [JAL Pay]", Amount: 12345},
		},
		{
			name: "last matching date line wins",
			body: "ご利用日時：2025年05月01日 12:00\n" +
				"ご利用金額：1,000円\n" +
				"ご利用日時：2025年05月02日 09:00\n",
			want: payment.Transaction{Date: "2025/05/02", Merchant: " [JAL Pay]", Amount: 1000},
		},
		{
			name: "unrecognized body yields zero record",
			body: "本メールは送信専用です。\nお問い合わせはサポートまで。\n",
			want: payment.Transaction{},
		},
		{
			name: "unmatched labels are ignored",
			body: "ご利用可能枠：30,000円\nご利用金額：1,000円\nご利用日時：2025年05月01日 12:00\n",
			want: payment.Transaction{Date: "2025/05/01", Merchant: " [JAL Pay]", Amount: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JALPay{}.Parse(tt.body, received)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
			if tt.want == (payment.Transaction{}) && got.Valid() {
				t.Error("zero record must not be valid")
			}
		})
	}
}

func TestJALPayParseBadAmount(t *testing.T) {
	body := "ご利用金額：１０００円\nご利用日時：2025年05月01日 12:00\n"
	if _, err := (JALPay{}).Parse(body, received); err == nil {
		t.Fatal("expected error for unparsable amount")
	}
}

func TestJALPayParseIdempotent(t *testing.T) {
	body := "ご利用金額：1,000円\nご利用日時：2025年05月01日 12:00\n"
	first, err := JALPay{}.Parse(body, received)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := JALPay{}.Parse(body, received)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Parse differs: %+v vs %+v", first, second)
	}
}

func TestRakutenPayParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want payment.Transaction
	}{
		{
			name: "usage with point and cash channels",
			body: "ご利用日時：2025年05月01日 10:30\n" +
				"ご利用店舗：ローソン\n" +
				"ポイント利用：100円\n" +
				"ご利用金額：900円\n",
			want: payment.Transaction{
				Date:      "2025/05/01",
				Merchant:  "ローソン [楽天ペイ]",
				Amount:    1000,
				Breakdown: &payment.Breakdown{Points: 100, Cash: 900},
			},
		},
		{
			name: "usage without merchant line falls back to provider tag",
			body: "ご利用金額：1,000円\nご利用日時：2025年05月01日 12:00\n",
			want: payment.Transaction{
				Date:      "2025/05/01",
				Merchant:  " [楽天ペイ]",
				Amount:    1000,
				Breakdown: &payment.Breakdown{Points: 0, Cash: 1000},
			},
		},
		{
			name: "top-up is a negative cash transaction",
			body: "チャージ金額：5,000円\n",
			want: payment.Transaction{
				Date:      "2025/06/10",
				Merchant:  "楽天キャッシュ",
				Amount:    -5000,
				Breakdown: &payment.Breakdown{Points: 0, Cash: -5000},
			},
		},
		{
			name: "unrecognized body yields zero record",
			body: "キャンペーンのお知らせ\n",
			want: payment.Transaction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RakutenPay{}.Parse(tt.body, received)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestANAPayParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want payment.Transaction
	}{
		{
			name: "usage notification",
			body: "ご利用金額：1,000円\nご利用日時：2025年05月01日 12:00\n",
			want: payment.Transaction{
				Date:      "2025/05/01",
				Merchant:  " [ANA Pay]",
				Amount:    1000,
				Breakdown: &payment.Breakdown{Points: 0, Cash: 1000},
			},
		},
		{
			name: "usage with merchant and points",
			body: "ご利用日時：2025年05月01日 12:00\n" +
				"ご利用店舗：ファミリーマート\n" +
				"ポイント利用：200円\n" +
				"ご利用金額：800円\n",
			want: payment.Transaction{
				Date:      "2025/05/01",
				Merchant:  "ファミリーマート [ANA Pay]",
				Amount:    1000,
				Breakdown: &payment.Breakdown{Points: 200, Cash: 800},
			},
		},
		{
			name: "top-up",
			body: "チャージ金額：3,000円\n",
			want: payment.Transaction{
				Date:      "2025/06/10",
				Merchant:  "ANA Pay",
				Amount:    -3000,
				Breakdown: &payment.Breakdown{Points: 0, Cash: -3000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ANAPay{}.Parse(tt.body, received)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVpointPayParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want payment.Transaction
	}{
		{
			name: "usage dates from receipt timestamp",
			body: "◇利用金額　:　1,000円\n◇利用先　:　セブンイレブン\n",
			want: payment.Transaction{
				Date:     "2025/06/10",
				Merchant: "セブンイレブン [VポイントPay]",
				Amount:   1000,
			},
		},
		{
			name: "balance addition is a negative amount",
			body: "◇加算額　:　2,000円\n",
			want: payment.Transaction{
				Date:     "2025/06/10",
				Merchant: "VポイントPay",
				Amount:   -2000,
			},
		},
		{
			name: "unrecognized body yields zero record",
			body: "◆お知らせ\nプリペイドのご案内\n",
			want: payment.Transaction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VpointPay{}.Parse(tt.body, received)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	parsers := All()
	if len(parsers) != 4 {
		t.Fatalf("got %d parsers, want 4", len(parsers))
	}

	tags := map[string]bool{}
	for _, p := range parsers {
		if p.Tag() == "" || p.Name() == "" {
			t.Errorf("parser %T missing tag or name", p)
		}
		if tags[p.Tag()] {
			t.Errorf("duplicate tag %q", p.Tag())
		}
		tags[p.Tag()] = true
		if p.Interval() <= 0 {
			t.Errorf("parser %T has non-positive interval", p)
		}
	}
}
