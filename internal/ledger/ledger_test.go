package ledger

import (
	"reflect"
	"testing"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

func TestFromBatchSingleChannel(t *testing.T) {
	batch := []payment.Transaction{
		{Date: "2025/05/01", Merchant: " [JAL Pay]", Amount: 1000},
		{Date: "2025/06/10", Merchant: "JAL Pay", Amount: -500},
	}

	got := FromBatch("JAL Pay", batch)
	want := []Entry{
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/05/01", Amount: 1000, Source: "JAL Pay", Content: " [JAL Pay]"},
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/06/10", Amount: -500, Source: "JAL Pay", Content: "JAL Pay"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromBatch() = %+v, want %+v", got, want)
	}
}

func TestFromBatchSplitsBreakdown(t *testing.T) {
	batch := []payment.Transaction{
		{
			Date:      "2025/05/01",
			Merchant:  "ローソン [楽天ペイ]",
			Amount:    1000,
			Breakdown: &payment.Breakdown{Points: 100, Cash: 900},
		},
	}

	got := FromBatch("楽天ペイ", batch)
	want := []Entry{
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/05/01", Amount: 100, Source: "楽天ペイ", Content: "ローソン [楽天ペイ] ポイント利用"},
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/05/01", Amount: 900, Source: "楽天ペイ", Content: "ローソン [楽天ペイ] 楽天キャッシュ利用"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromBatch() = %+v, want %+v", got, want)
	}
}

func TestFromBatchANAPayCashKeepsBareMerchant(t *testing.T) {
	batch := []payment.Transaction{
		{
			Date:      "2025/05/02",
			Merchant:  "セブンイレブン [ANA Pay]",
			Amount:    1200,
			Breakdown: &payment.Breakdown{Points: 200, Cash: 1000},
		},
	}

	got := FromBatch("ANA Pay", batch)
	want := []Entry{
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/05/02", Amount: 200, Source: "ANA Pay", Content: "セブンイレブン [ANA Pay] ポイント利用"},
		{LargeCategory: "0", MiddleCategory: "0", Date: "2025/05/02", Amount: 1000, Source: "ANA Pay", Content: "セブンイレブン [ANA Pay]"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromBatch() = %+v, want %+v", got, want)
	}
}

func TestFromBatchDropsZeroChannels(t *testing.T) {
	batch := []payment.Transaction{
		{
			Date:      "2025/06/10",
			Merchant:  "楽天キャッシュ",
			Amount:    -5000,
			Breakdown: &payment.Breakdown{Points: 0, Cash: -5000},
		},
	}

	got := FromBatch("楽天ペイ", batch)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1 (zero points channel dropped)", len(got))
	}
	if got[0].Amount != -5000 || got[0].Content != "楽天キャッシュ 楽天キャッシュ利用" {
		t.Errorf("entry = %+v", got[0])
	}
}

func TestFromBatchEmpty(t *testing.T) {
	if got := FromBatch("JAL Pay", nil); len(got) != 0 {
		t.Errorf("FromBatch(nil) = %+v, want empty", got)
	}
}
