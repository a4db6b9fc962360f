package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// RakutenPay parses「楽天ペイアプリご利用内容確認」and 楽天キャッシュ
// チャージ完了 notification emails. Payments can be settled partly with
// points and partly with 楽天キャッシュ, so the record carries a Breakdown.
type RakutenPay struct{}

func (RakutenPay) Name() string { return "楽天ペイ" }

func (RakutenPay) Tag() string { return "rp" }

func (RakutenPay) Interval() time.Duration { return time.Minute }

func (RakutenPay) Lookback() time.Duration { return 0 }

func (RakutenPay) Parse(body string, received time.Time) (payment.Transaction, error) {
	var tx payment.Transaction
	var points, cash int64
	var split bool

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "ご利用") &&
			!strings.HasPrefix(line, "ポイント利用") &&
			!strings.HasPrefix(line, "チャージ金額") {
			continue
		}
		key, value, found := strings.Cut(line, "：")
		if !found {
			continue
		}

		switch key {
		case "ご利用日時":
			tx.Date = payment.NormalizeDate(value)
		case "ご利用店舗":
			tx.Merchant = value + " [楽天ペイ]"
		case "ポイント利用":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("rakuten pay: %w", err)
			}
			points = n
			split = true
		case "ご利用金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("rakuten pay: %w", err)
			}
			cash = n
			split = true
			if tx.Merchant == "" {
				tx.Merchant = " [楽天ペイ]"
			}
		case "チャージ金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("rakuten pay: %w", err)
			}
			cash = -n
			points = 0
			split = true
			tx.Date = payment.DateOf(received)
			tx.Merchant = "楽天キャッシュ"
		}
	}

	if split {
		tx.Amount = points + cash
		tx.Breakdown = &payment.Breakdown{Points: points, Cash: cash}
	}

	return tx, nil
}
