package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// JALPay parses「［JAL Pay］ご利用のお知らせ」and
// 「［JAL Pay］チャージ完了のお知らせ」notification emails.
type JALPay struct{}

func (JALPay) Name() string { return "JAL Pay" }

func (JALPay) Tag() string { return "jp" }

func (JALPay) Interval() time.Duration { return time.Minute }

func (JALPay) Lookback() time.Duration { return 0 }

func (JALPay) Parse(body string, received time.Time) (payment.Transaction, error) {
	var tx payment.Transaction

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "ご利用") && !strings.HasPrefix(line, "チャージ金額") {
			continue
		}
		key, value, found := strings.Cut(line, "：")
		if !found {
			continue
		}

		switch key {
		case "ご利用日時":
			tx.Date = payment.NormalizeDate(value)
		case "ご利用金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("jal pay: %w", err)
			}
			tx.Amount = n
			// Usage notifications carry no merchant line; tag only.
			tx.Merchant = " [JAL Pay]"
		case "チャージ金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("jal pay: %w", err)
			}
			// Top-ups carry no date in-body and count as negative spend.
			tx.Amount = -n
			tx.Date = payment.DateOf(received)
			tx.Merchant = "JAL Pay"
		}
	}

	return tx, nil
}
