package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// VpointPay parses「【VポイントPay】ご利用のお知らせ」and
// 「【VポイントPay】プリペイド残高加算のお知らせ」notification emails.
// The body carries no usable date, so every matched line dates the
// transaction from the email's own receipt timestamp. Vpoint notifications
// can lag delivery by a day or more, hence the longer lookback window.
type VpointPay struct{}

func (VpointPay) Name() string { return "VポイントPay" }

func (VpointPay) Tag() string { return "vp" }

func (VpointPay) Interval() time.Duration { return 2 * time.Minute }

func (VpointPay) Lookback() time.Duration { return 48 * time.Hour }

func (VpointPay) Parse(body string, received time.Time) (payment.Transaction, error) {
	var tx payment.Transaction

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "◇利用") && !strings.HasPrefix(line, "◇加算") {
			continue
		}
		key, value, found := strings.Cut(line, ":　")
		if !found {
			continue
		}
		key = strings.TrimRight(key, "　")

		switch key {
		case "◇利用金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("vpoint pay: %w", err)
			}
			tx.Amount = n
			tx.Date = payment.DateOf(received)
		case "◇利用先":
			tx.Merchant = value + " [VポイントPay]"
			tx.Date = payment.DateOf(received)
		case "◇加算額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("vpoint pay: %w", err)
			}
			tx.Amount = -n
			tx.Merchant = "VポイントPay"
			tx.Date = payment.DateOf(received)
		}
	}

	return tx, nil
}
